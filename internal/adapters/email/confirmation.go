package email

import (
	"bytes"
	"html/template"
)

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`<!doctype html>
<html lang="fr">
<body style="font-family: sans-serif">
  <h1>Bienvenue sur ParleVrai15, {{.Name}} !</h1>
  <p>Confirme ton adresse email pour commencer tes leçons de 15 minutes :</p>
  <p><a href="{{.Link}}">Confirmer mon compte</a></p>
  <p style="color:#666">Ce lien expire dans 24 heures. Si tu n'as pas créé de compte, ignore ce message.</p>
</body>
</html>`))

// ConfirmationEmail builds the signup confirmation email.
func ConfirmationEmail(to, name, link string) (SendRequest, error) {
	var buf bytes.Buffer
	err := confirmationTmpl.Execute(&buf, struct{ Name, Link string }{name, link})
	if err != nil {
		return SendRequest{}, err
	}
	return SendRequest{
		To:      []string{to},
		Subject: "Confirme ton compte ParleVrai15",
		HTML:    buf.String(),
	}, nil
}
