package domain

// OutputMode selects how a rendered PDF is returned to the caller.
type OutputMode int

const (
	OutputBinary OutputMode = iota
	OutputBase64
)

func (m OutputMode) String() string {
	if m == OutputBase64 {
		return "base64"
	}
	return "binary"
}

// ConversionRequest is the body accepted by the conversion endpoint.
type ConversionRequest struct {
	URL    string `json:"url" validate:"required,url"`
	Base64 bool   `json:"base64"`
}

// Mode maps the request flag to an OutputMode.
func (r ConversionRequest) Mode() OutputMode {
	if r.Base64 {
		return OutputBase64
	}
	return OutputBinary
}

// Base64Result is the JSON envelope returned in base64 mode.
type Base64Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"`
	Data    string `json:"data"`
}

// LoginRequest carries the credentials posted to /login.
type LoginRequest struct {
	Usuario string `json:"usuario"`
	Senha   string `json:"senha"`
}

// LoginResponse carries the issued access token.
type LoginResponse struct {
	Token string `json:"token"`
}
