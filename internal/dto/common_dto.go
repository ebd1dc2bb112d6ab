package dto

// Result is the uniform success envelope for 2xx responses. Error
// responses use apierror with the same success field, so every payload of
// the API can be branched on one flag.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
}

func OK(data interface{}) Result {
	return Result{Success: true, Data: data}
}
