// Package view holds the HTML templates rendered by the handlers
package view

import (
	"embed"
	"html/template"
	"time"

	"github.com/amirhossein-jamali/bank-ledger/internal/domain/entity"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses every embedded template. Pages are addressed by file name,
// e.g. "account.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// FuncMap returns the helpers available inside templates
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"formatTime": func(t time.Time) string {
			return t.Local().Format("Jan 2, 2006 3:04 PM")
		},
		"isWithdrawal": func(kind entity.TransactionKind) bool {
			return kind == entity.KindWithdrawal
		},
	}
}
