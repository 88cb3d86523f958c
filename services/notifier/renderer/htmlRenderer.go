package renderer

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"path/filepath"

	"github.com/iulianpascalau/ui-email-notification/services/notifier/common"
	logger "github.com/multiversx/mx-chain-logger-go"
)

var log = logger.GetOrCreate("renderer")

var funcMap = template.FuncMap{
	"inc": func(i int) int {
		return i + 1
	},
}

type htmlRenderer struct {
	templatePath string
}

// NewHTMLRenderer creates a renderer that executes the provided template file
func NewHTMLRenderer(templatePath string) (*htmlRenderer, error) {
	if len(templatePath) == 0 {
		return nil, errors.New("empty template path")
	}

	return &htmlRenderer{
		templatePath: templatePath,
	}, nil
}

// Render loads the template file and executes it with the provided data. The file is read on each call.
func (r *htmlRenderer) Render(data common.TemplateData) (string, error) {
	name := filepath.Base(r.templatePath)
	tmpl, err := template.New(name).Funcs(funcMap).Option("missingkey=error").ParseFiles(r.templatePath)
	if err != nil {
		return "", fmt.Errorf("failed to load email template: %w", err)
	}

	buff := bytes.NewBuffer(nil)
	err = tmpl.ExecuteTemplate(buff, name, data)
	if err != nil {
		return "", fmt.Errorf("failed to render email template: %w", err)
	}

	log.Debug("rendered email body", "template", r.templatePath, "size", buff.Len())

	return buff.String(), nil
}

// IsInterfaceNil returns true if the value under the interface is nil
func (r *htmlRenderer) IsInterfaceNil() bool {
	return r == nil
}
