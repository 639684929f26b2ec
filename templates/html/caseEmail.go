package templates

import (
	"fmt"
	"html"
	"strings"
)

// RenderCaseEmail generates the HTML for an appointment update email.
// The body is plain text that gets HTML-escaped and has newlines converted
// to <br> tags.
func RenderCaseEmail(subject, body, link string) string {
	escaped := html.EscapeString(body)
	htmlBody := strings.ReplaceAll(escaped, "\n", "<br>")
	safeSubject := html.EscapeString(subject)

	button := ""
	if link != "" {
		button = fmt.Sprintf(`<p><a class="cta-button" href="%s">View appointment</a></p>`, html.EscapeString(link))
	}

	return fmt.Sprintf(`<!DOCTYPE html PUBLIC "-//W3C//DTD XHTML 1.0 Strict//EN" "http://www.w3.org/TR/xhtml1/DTD/xhtml1-strict.dtd">
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <meta http-equiv="Content-Type" content="text/html; charset=utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1, minimum-scale=1, maximum-scale=1">
  <title>%s</title>
  <style type="text/css">
    body { font-family: Georgia, 'Times New Roman', serif; margin: 0; padding: 0; background-color: #f4f1ea; }
    .container { max-width: 600px; margin: 0 auto; background-color: #ffffff; }
    .header { background-color: #1f3a5f; padding: 32px 30px; text-align: center; }
    .header h1 { color: #fff; margin: 0; font-size: 22px; font-weight: 600; }
    .content { padding: 32px 30px; color: #2d2d2d; line-height: 1.6; font-size: 15px; }
    .cta-button { display: inline-block; background-color: #1f3a5f; color: #fff; padding: 12px 24px; border-radius: 6px; text-decoration: none; }
    .footer { padding: 24px; text-align: center; color: #7a7a7a; font-size: 12px; border-top: 1px solid #e5e1d8; }
  </style>
</head>
<body>
  <div class="container">
    <div class="header">
      <h1>%s</h1>
    </div>
    <div class="content">
      %s
      %s
    </div>
    <div class="footer">
      <p>Legal Aid. You are receiving this because you are a party to this appointment.</p>
    </div>
  </div>
</body>
</html>`, safeSubject, safeSubject, htmlBody, button)
}
