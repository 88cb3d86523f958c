package testsCommon

import "github.com/iulianpascalau/ui-email-notification/services/notifier/common"

// RendererStub -
type RendererStub struct {
	RenderHandler func(data common.TemplateData) (string, error)
}

// Render -
func (stub *RendererStub) Render(data common.TemplateData) (string, error) {
	if stub.RenderHandler != nil {
		return stub.RenderHandler(data)
	}

	return "", nil
}

// IsInterfaceNil -
func (stub *RendererStub) IsInterfaceNil() bool {
	return stub == nil
}
