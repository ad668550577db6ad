package registry

// Response is the uniform management-operation envelope. Authorization
// failures and constraint violations surface as Success=false with a human
// message rather than crossing the boundary as errors.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

func ok(data interface{}) Response {
	return Response{Success: true, Data: data}
}

func okMsg(data interface{}, msg string) Response {
	return Response{Success: true, Data: data, Message: msg}
}

func fail(msg string) Response {
	return Response{Success: false, Message: msg}
}
