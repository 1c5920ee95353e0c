package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"verimail/internal/models"
	"verimail/internal/services"
	"verimail/internal/utils"
)

type EmailHandler struct {
	projects services.ProjectService
	mailer   services.EmailService
}

func NewEmailHandler(projects services.ProjectService, mailer services.EmailService) *EmailHandler {
	return &EmailHandler{projects: projects, mailer: mailer}
}

type attachmentPayload struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	// base64 либо уже сырой текст — различаем эвристикой на границе
	Data string `json:"data"`
}

type sendCustomEmailRequest struct {
	Recipients  []string            `json:"recipients"`
	APIKey      string              `json:"api_key"`
	Sender      string              `json:"sender"`
	Subject     string              `json:"subject"`
	Body        string              `json:"body"`
	HTMLContent string              `json:"html_content"`
	ReplyTo     string              `json:"reply_to"`
	Cc          []string            `json:"cc"`
	Bcc         []string            `json:"bcc"`
	Attachments []attachmentPayload `json:"attachments"`
}

// @Summary      Send a custom email
// @Description  JSON body or multipart form; file parts become attachments
// @Tags         Mail
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Param        request  body      sendCustomEmailRequest  true  "Message"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /send-custom-email [post]
func (h *EmailHandler) SendCustomEmail(c *gin.Context) {
	var (
		req         sendCustomEmailRequest
		attachments []models.Attachment
		ok          bool
	)
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		req, attachments, ok = h.parseMultipart(c)
	} else {
		req, attachments, ok = h.parseJSON(c)
	}
	if !ok {
		return
	}

	var missing []string
	if len(req.Recipients) == 0 {
		missing = append(missing, "recipients")
	}
	if req.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if req.Sender == "" {
		missing = append(missing, "sender")
	}
	if len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Parâmetros obrigatórios ausentes: " + strings.Join(missing, ", "),
		})
		return
	}

	for _, recipient := range req.Recipients {
		if !utils.IsValidEmail(recipient) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Lista de destinatários inválida"})
			return
		}
	}

	project, err := h.projects.GetByAPIKey(req.APIKey)
	if err != nil {
		log.Printf("[mail][custom] project lookup: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao enviar email"})
		return
	}
	if project == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Projeto não encontrado"})
		return
	}

	subject := req.Subject
	if subject == "" {
		subject = "Sem assunto"
	}

	msg := &models.OutboundMessage{
		Sender:      req.Sender,
		Recipients:  req.Recipients,
		Cc:          req.Cc,
		Bcc:         req.Bcc,
		ReplyTo:     req.ReplyTo,
		Subject:     subject,
		Body:        req.Body,
		HTMLBody:    req.HTMLContent,
		Attachments: attachments,
	}

	if err := h.mailer.SendCustomEmail(msg, project); err != nil {
		if !errors.Is(err, services.ErrMailDispatch) {
			log.Printf("[mail][custom] %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro ao enviar email"})
		return
	}

	filenames := make([]string, 0, len(attachments))
	for _, att := range attachments {
		filenames = append(filenames, att.Filename)
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Email enviado com sucesso",
		"details": gin.H{
			"recipients":  req.Recipients,
			"subject":     subject,
			"attachments": filenames,
		},
	})
}

func (h *EmailHandler) parseJSON(c *gin.Context) (sendCustomEmailRequest, []models.Attachment, bool) {
	var req sendCustomEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return req, nil, false
	}
	attachments := make([]models.Attachment, 0, len(req.Attachments))
	for _, att := range req.Attachments {
		attachments = append(attachments, models.Attachment{
			Filename:    att.Filename,
			ContentType: att.ContentType,
			Data:        decodeAttachmentData(att.Data),
		})
	}
	return req, attachments, true
}

func (h *EmailHandler) parseMultipart(c *gin.Context) (sendCustomEmailRequest, []models.Attachment, bool) {
	var req sendCustomEmailRequest
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
		return req, nil, false
	}

	field := func(name string) string {
		if vs := form.Value[name]; len(vs) > 0 {
			return strings.TrimSpace(vs[0])
		}
		return ""
	}
	req.APIKey = field("api_key")
	req.Sender = field("sender")
	req.Subject = field("subject")
	req.Body = field("body")
	req.HTMLContent = field("html_content")
	req.ReplyTo = field("reply_to")
	req.Recipients = parseAddressList(field("recipients"))
	req.Cc = parseAddressList(field("cc"))
	req.Bcc = parseAddressList(field("bcc"))

	// файловые части — вложения как есть, без base64
	var attachments []models.Attachment
	for _, files := range form.File {
		for _, fh := range files {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
				return req, nil, false
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Dados inválidos"})
				return req, nil, false
			}
			attachments = append(attachments, models.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}
	return req, attachments, true
}

// parseAddressList — поле формы может быть JSON-массивом или строкой
// адресов через запятую.
func parseAddressList(raw string) []string {
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	for _, part := range strings.Split(raw, ",") {
		if addr := strings.TrimSpace(part); addr != "" {
			list = append(list, addr)
		}
	}
	return list
}

// decodeAttachmentData — пробуем base64; не декодируется — значит это
// уже сырые байты, оставляем как есть.
func decodeAttachmentData(raw string) []byte {
	if decoded, err := base64.StdEncoding.DecodeString(raw); err == nil {
		return decoded
	}
	return []byte(raw)
}
