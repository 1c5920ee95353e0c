package models

// Attachment — вложение письма. Data всегда сырые байты: base64 из
// JSON-запросов декодируется на границе HTTP, не здесь.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// OutboundMessage — письмо, собираемое на один вызов отправки.
// Никогда не сохраняется.
type OutboundMessage struct {
	Sender      string
	Recipients  []string
	Cc          []string
	Bcc         []string
	ReplyTo     string
	Subject     string
	Body        string
	HTMLBody    string
	Attachments []Attachment
}
