package offline

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/iyhunko/price-alerts-dashboard/internal/notify"
)

//go:embed sw.js.tmpl
var scriptSource string

var scriptTemplate = template.Must(template.New("sw.js").Funcs(template.FuncMap{
	"json": func(v any) (string, error) {
		b, err := json.Marshal(v)
		return string(b), err
	},
}).Parse(scriptSource))

type scriptData struct {
	Config
	DefaultTitle string
	DefaultBody  string
	DefaultURL   string
	Icon         string
	Badge        string
	Actions      []notify.Action
}

// Script renders the background script for conf.
func Script(conf Config) ([]byte, error) {
	var buf bytes.Buffer
	err := scriptTemplate.Execute(&buf, scriptData{
		Config:       conf,
		DefaultTitle: DefaultPushTitle,
		DefaultBody:  DefaultPushBody,
		DefaultURL:   notify.DefaultURL,
		Icon:         notify.DefaultIcon,
		Badge:        notify.DefaultBadge,
		Actions:      notify.Actions(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render background script: %w", err)
	}
	return buf.Bytes(), nil
}
