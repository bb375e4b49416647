package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"

	"webhook_relay_backend/platform/apperr"
	"webhook_relay_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// MaxBodyBytes caps inbound webhook bodies.
const MaxBodyBytes = 1 << 20

const (
	errBodyTooLarge = "request body exceeds the 1MB limit"
	errInvalidJSON  = "invalid JSON body"
	errNotObject    = "request body must be a JSON object"
	errInvalidForm  = "unable to parse form data"
	errReadBody     = "unable to read request body"
)

// Handler handles webhook HTTP requests.
type Handler struct {
	service *Service
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleWebhook relays a submission to both sinks.
// POST /webhook
func (h *Handler) HandleWebhook(c *gin.Context) {
	payload, err := parsePayload(c)
	if httpkit.HandleFailure(c, err) {
		return
	}

	// Sink calls finish even if the caller hangs up.
	ctx := context.WithoutCancel(c.Request.Context())
	status, body := h.service.Dispatch(ctx, payload, requestContext(c.Request))
	httpkit.JSON(c, status, body)
}

// parsePayload decodes JSON and form bodies. Other content types yield an
// empty payload.
func parsePayload(c *gin.Context) (Payload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	switch c.ContentType() {
	case binding.MIMEJSON:
		return decodeJSON(c.Request.Body)
	case binding.MIMEPOSTForm, binding.MIMEMultipartPOSTForm:
		return parseForm(c.Request, c.ContentType() == binding.MIMEMultipartPOSTForm)
	default:
		return Payload{}, nil
	}
}

func decodeJSON(body io.Reader) (Payload, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, bodyError(err, errReadBody)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return Payload{}, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil || decoder.More() {
		return nil, apperr.BadRequest(errInvalidJSON)
	}

	switch v := value.(type) {
	case map[string]any:
		return Payload(v), nil
	case nil:
		return Payload{}, nil
	default:
		return nil, apperr.BadRequest(errNotObject)
	}
}

func parseForm(r *http.Request, multipart bool) (Payload, error) {
	var err error
	if multipart {
		err = r.ParseMultipartForm(MaxBodyBytes)
	} else {
		err = r.ParseForm()
	}
	if err != nil {
		return nil, bodyError(err, errInvalidForm)
	}

	payload := Payload{}
	if r.MultipartForm != nil {
		for key, values := range r.MultipartForm.Value {
			if len(values) > 0 {
				payload[key] = values[0]
			}
		}
	}
	for key, values := range r.PostForm {
		if _, exists := payload[key]; !exists && len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload, nil
}

func bodyError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge(errBodyTooLarge)
	}
	return apperr.Wrap(apperr.KindBadRequest, message, err)
}

func requestContext(r *http.Request) RequestContext {
	addr := strings.TrimSpace(r.RemoteAddr)
	if host, _, err := net.SplitHostPort(addr); err == nil {
		addr = host
	}
	return RequestContext{
		ClientAddr:   addr,
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		Referer:      r.Referer(),
	}
}
