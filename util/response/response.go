// Package response carries the envelope every endpoint answers with. The
// transport code is frequently 200 even for business-rule failures; the real
// outcome lives in the embedded status and message.
package response

type Body struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func New(status int, message string, data any) Body {
	if data == nil {
		data = map[string]any{}
	}
	return Body{Status: status, Message: message, Data: data}
}
