package email

import (
	"bytes"
	"fmt"
	"html/template"
	"path/filepath"
)

// VerificationEmailData holds data for the email verification template
type VerificationEmailData struct {
	CompanyName     string
	DisplayName     string
	VerificationURL string
}

// MagicLinkEmailData holds data for the magic link template
type MagicLinkEmailData struct {
	CompanyName string
	DisplayName string
	LoginURL    string
}

// VerificationCodeEmailData holds data for the login code template
type VerificationCodeEmailData struct {
	CompanyName string
	DisplayName string
	Code        string
}

// loadTemplates loads all email templates from the templates directory
func loadTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)

	templateDir := "templates/email"

	templateFiles := []string{
		"verification.html",
		"magic_link.html",
		"verification_code.html",
	}

	for _, file := range templateFiles {
		name := file[:len(file)-len(filepath.Ext(file))]

		tmpl, err := template.ParseFiles(filepath.Join(templateDir, file))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", file, err)
		}

		templates[name] = tmpl
	}

	return templates, nil
}

// renderTemplate renders an email template with the provided data
func renderTemplate(templates map[string]*template.Template, name string, data interface{}) (string, error) {
	tmpl, exists := templates[name]
	if !exists {
		return "", fmt.Errorf("template %s not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
