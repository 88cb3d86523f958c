package client

import (
	"fmt"
	"net/http"
)

type errStatusNotOK struct {
	statusCode int
	body       string
}

func (e *errStatusNotOK) Error() string {
	return fmt.Sprintf("Error %d %s: %s", e.statusCode, http.StatusText(e.statusCode), e.body)
}

type errPathNotFound string

func (e errPathNotFound) Error() string {
	return "JSON path not found in response: " + string(e)
}
