package core

import (
	"bytes"
	"fmt"
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"github.com/pkg/errors"

	appfs "github.com/trezcool/shule/fs"
)

const (
	txtExt  = ".txt"
	htmlExt = ".html"

	emailTemplateDir = "templates/email"
)

var (
	templates tmplCache
	tmplInit  sync.Once
)

type (
	tmplCacheEntry map[string]interface{}    // {ext: *Template}
	tmplCache      map[string]tmplCacheEntry // {name: tmplCacheEntry}

	Attachment struct {
		Content     *bytes.Buffer
		ContentType string
		Filename    string
	}

	EmailMessage struct {
		To          []mail.Address
		Cc          []mail.Address
		Bcc         []mail.Address
		Subject     string
		BodyStr     string // simple text/plain, non-templated content
		Attachments []Attachment

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates loads and caches all email templates from the embedded FS.
// Each template name may have a .txt and an .html variant.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(func() {
		templates = make(tmplCache)

		entries, err := appfs.FS.ReadDir(emailTemplateDir)
		if err != nil {
			logger.Fatal(fmt.Sprintf("reading email template dir: %v", err), err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			fname := entry.Name()
			ext := path.Ext(fname)
			name := strings.TrimSuffix(fname, ext)
			fpath := path.Join(emailTemplateDir, fname)

			cache, ok := templates[name]
			if !ok {
				cache = make(tmplCacheEntry)
				templates[name] = cache
			}

			switch ext {
			case txtExt:
				tmpl, err := texttmpl.ParseFS(appfs.FS, fpath)
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing %s: %v", fpath, err), err)
				}
				cache[ext] = tmpl
			case htmlExt:
				tmpl, err := htmltmpl.ParseFS(appfs.FS, fpath)
				if err != nil {
					logger.Fatal(fmt.Sprintf("parsing %s: %v", fpath, err), err)
				}
				cache[ext] = tmpl
			}
		}
	})
}

func (m *EmailMessage) getContextData() ContextData {
	return ContextData{
		FrontendBaseURL: Conf.FrontendBaseURL,
		Data:            m.TemplateData,
	}
}

func (m *EmailMessage) getTemplate(ext string) (interface{}, bool) {
	cache, ok := templates[m.TemplateName]
	if !ok {
		return nil, ok
	}
	tmpl, ok := cache[ext]
	return tmpl, ok
}

func (m *EmailMessage) renderText() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if tmpl, ok := m.getTemplate(txtExt); ok {
		var buf bytes.Buffer
		if err := tmpl.(*texttmpl.Template).Execute(&buf, m.getContextData()); err != nil {
			return errors.Wrapf(err, "executing template %s%s", m.TemplateName, txtExt)
		}
		m.TextContent = buf.String()
	}
	return nil
}

func (m *EmailMessage) renderHTML() error {
	if tmpl, ok := m.getTemplate(htmlExt); ok {
		var buf bytes.Buffer
		if err := tmpl.(*htmltmpl.Template).Execute(&buf, m.getContextData()); err != nil {
			return errors.Wrapf(err, "executing template %s%s", m.TemplateName, htmlExt)
		}
		m.HTMLContent = buf.String()
	}
	return nil
}

// Render resolves the message's text and HTML contents from its template or BodyStr.
func (m *EmailMessage) Render() error {
	if err := m.renderText(); err != nil {
		return err
	}
	return m.renderHTML()
}

func (m *EmailMessage) HasRecipients() bool {
	return len(m.To) > 0 || len(m.Cc) > 0 || len(m.Bcc) > 0
}

func (m *EmailMessage) HasContent() bool {
	return m.TextContent != "" || m.HTMLContent != ""
}

func (m *EmailMessage) HasAttachments() bool {
	return len(m.Attachments) > 0
}
