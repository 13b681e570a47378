package domain

// Общий конверт JSON-ответа
type APIError struct {
	Code int    `json:"code,omitempty"`
	Text string `json:"text,omitempty"`
}

type APIEnvelope struct {
	Error    *APIError `json:"error,omitempty"`
	Response any       `json:"response,omitempty"`
	Data     any       `json:"data,omitempty"`
}

// Коды ошибок в конверте
const (
	ErrCodeBadParams        = 1000
	ErrCodeMalformedRange   = 1001
	ErrCodeNotFound         = 1004
	ErrCodeMethodNotAllowed = 1005
	ErrCodeTooLarge         = 1013
	ErrCodeRangeNotSatisfy  = 1016
	ErrCodeStorage          = 1500
	ErrCodeUnexpected       = 1599
)

// Утилиты для сборки конвертов
func OkResponse(resp any) APIEnvelope { return APIEnvelope{Response: resp} }
func OkData(data any) APIEnvelope     { return APIEnvelope{Data: data} }
func Fail(code int, text string) APIEnvelope {
	return APIEnvelope{Error: &APIError{Code: code, Text: text}}
}

// Ответ на POST /upload: {message, file}
type UploadResult struct {
	Message string     `json:"message"`
	File    FileResult `json:"file"`
}

type FileResult struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"originalname"`
	Size         int64  `json:"size"`
	CreatedAt    string `json:"created_at"`
	URL          string `json:"url"`
}
