package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	verificationSubject = "Verify Your Email - Car Rental"
	welcomeSubject      = "Welcome to Car Rental"
)

var templates = template.Must(template.Must(template.New("verification").Parse(`
<h3>Hello {{.Name}},</h3>
<p>Your verification code is:</p>
<h2>{{.Code}}</h2>
<p>Enter this code to verify your account.</p>
`)).New("welcome").Parse(`
<h3>Hello {{.Name}},</h3>
<p>Welcome to our car rental service! We are excited to have you on board.</p>
<p>Feel free to explore our services and let us know if you have any questions.</p>
<p>Best regards,</p>
<p>The Car Rental Team</p>
`))

type templateData struct {
	Name string
	Code string
}

// RenderVerification builds the email carrying a verification code.
func RenderVerification(to, name, code string) (Email, error) {
	return render(KindVerification, to, verificationSubject, templateData{Name: name, Code: code})
}

// RenderWelcome builds the email sent after registration.
func RenderWelcome(to, name string) (Email, error) {
	return render(KindWelcome, to, welcomeSubject, templateData{Name: name})
}

func render(kind Kind, to, subject string, data templateData) (Email, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, string(kind), data); err != nil {
		return Email{}, fmt.Errorf("render %s email: %w", kind, err)
	}
	return Email{Kind: kind, To: to, Subject: subject, HTML: buf.String()}, nil
}
