package errors

import (
	"encoding/json"
	"net/http"
)

// problemRender is a gin render.Render that keeps the problem+json content type,
// which c.JSON would overwrite.
type problemRender struct {
	problem ProblemDetail
}

func (r problemRender) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	payload, err := json.Marshal(r.problem)
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func (r problemRender) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if val := header["Content-Type"]; len(val) == 0 {
		header["Content-Type"] = []string{ContentTypeProblemJSON}
	}
}
