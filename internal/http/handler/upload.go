package handler

import (
	"bytes"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"ocrweb/internal/http/middleware"
	"ocrweb/internal/pipeline"
	"ocrweb/internal/service"
	"ocrweb/internal/view"
)

// CSRFContextKey is the Fiber locals key the csrf middleware stores its token under.
const CSRFContextKey = "csrf"

// Messages shown on the upload page.
const (
	MsgFileRequired      = "Please select a file to upload."
	MsgEngineUnavailable = "OCR engine not available. The file was saved but could not be processed."
	msgStoreFailed       = "Could not save the uploaded file: "
	msgRecognizeFailed   = "OCR processing failed: "
)

// FormOptions carries presentation settings shared by the upload handlers.
type FormOptions struct {
	MaxUploadBytes int
}

// UploadForm renders the empty form (form-display state).
//
// @Summary  Upload form
// @Tags     upload
// @Produce  html
// @Success  200
// @Router   / [get]
func UploadForm(v *view.Renderer, opts FormOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, v, pageData(c, opts))
	}
}

// ProcessUpload handles a form submission (multipart/form-data, field name: file).
// Every outcome, failures included, is rendered as the upload page with status 200.
//
// @Summary  Upload a document and render the OCR output
// @Tags     upload
// @Accept   multipart/form-data
// @Produce  html
// @Param    file        formData  file    true  "Document image or PDF"
// @Param    csrf_token  formData  string  true  "CSRF token from the form"
// @Success  200
// @Failure  403
// @Failure  413
// @Router   / [post]
func ProcessUpload(svc service.ExtractionService, v *view.Renderer, opts FormOptions) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data := pageData(c, opts)

		fh, err := c.FormFile("file")
		if err != nil || fh.Filename == "" || fh.Size == 0 {
			data.Message = MsgFileRequired
			return render(c, v, data)
		}

		f, err := fh.Open()
		if err != nil {
			data.Submitted = true
			data.Error = msgStoreFailed + err.Error()
			return render(c, v, data)
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		ext, err := svc.Process(c.UserContext(), service.UploadInput{
			Reader:       f,
			OriginalName: fh.Filename,
			ContentType:  ct,
			Size:         fh.Size,
		})

		data.Submitted = true
		data.Extraction = ext
		switch {
		case err == nil:
			text, ferr := view.FormatResult(ext.Result)
			if ferr != nil {
				data.Error = msgRecognizeFailed + ferr.Error()
				break
			}
			data.ResultText = text
		case errors.Is(err, pipeline.ErrEngineUnavailable):
			data.Notice = MsgEngineUnavailable
		case errors.Is(err, service.ErrStore):
			data.Error = msgStoreFailed + cause(err, service.ErrStore)
		case errors.Is(err, service.ErrRecognize):
			data.Error = msgRecognizeFailed + cause(err, service.ErrRecognize)
		default:
			data.Error = msgRecognizeFailed + err.Error()
		}
		return render(c, v, data)
	}
}

func pageData(c *fiber.Ctx, opts FormOptions) view.PageData {
	token, _ := c.Locals(CSRFContextKey).(string)
	return view.PageData{
		CSRFToken: token,
		MaxUpload: view.HumanBytes(opts.MaxUploadBytes),
		RequestID: middleware.RequestIDFromCtx(c),
	}
}

// render writes the page with status 200. The template is executed into a
// buffer first so a template error never leaves a half-written page.
func render(c *fiber.Ctx, v *view.Renderer, data view.PageData) error {
	var buf bytes.Buffer
	if err := v.Page(&buf, data); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}

// cause strips the sentinel prefix from a classified error message.
func cause(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}
