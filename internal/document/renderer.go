// Package document renders contract snapshots. Render is a pure
// function of its input: the same snapshot data always produces the
// same text, which is what makes stored contract versions comparable.
package document

import (
	"strings"
	"text/template"
	"time"
)

// Snapshot carries everything the contract text needs, captured from
// the booking and rider template at generation time. The workflow
// stores the rendered output, never the Snapshot itself.
type Snapshot struct {
	Number          string    // contract number printed in the header
	Title           string    // document title
	Version         uint32    // version within the booking
	ArtistName      string    // artist stage name or account email
	VenueName       string    // venue display name
	VenueAddress    string    // venue street address
	EventAt         time.Time // event datetime (UTC)
	FeeCents        uint32    // agreed fee in cents
	EventDetails    string    // free-text engagement description
	RiderName       string    // rider template name, empty when none attached
	RiderSound      string
	RiderLighting   string
	RiderStage      string
	RiderHosp       string
	RiderPayTerms   string
	RiderExtras     string
	GeneratedAt     time.Time // stamped into the footer
}

const contractTmpl = `{{.Title}}
Contract No. {{.Number}} (version {{.Version}})

This agreement is made between {{.ArtistName}} ("Artist") and
{{.VenueName}}, {{.VenueAddress}} ("Venue").

ENGAGEMENT
The Artist will perform at the Venue on {{.EventAt.Format "2006-01-02 15:04"}} UTC.
{{- if .EventDetails}}
Details: {{.EventDetails}}
{{- end}}

FEE
The Venue will pay the Artist {{printf "%d.%02d" (div .FeeCents 100) (mod .FeeCents 100)}} (in the booking currency).
{{- if .RiderName}}

RIDER ({{.RiderName}})
Sound:          {{orDash .RiderSound}}
Lighting:       {{orDash .RiderLighting}}
Stage:          {{orDash .RiderStage}}
Hospitality:    {{orDash .RiderHosp}}
Payment terms:  {{orDash .RiderPayTerms}}
{{- if .RiderExtras}}
Extras:         {{.RiderExtras}}
{{- end}}
{{- end}}

Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}} UTC.
`

var tmpl = template.Must(template.New("contract").Funcs(template.FuncMap{
	"div": func(a, b uint32) uint32 { return a / b },
	"mod": func(a, b uint32) uint32 { return a % b },
	"orDash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "-"
		}
		return s
	},
}).Parse(contractTmpl))

// Render produces the plain-text contract snapshot.
func Render(s Snapshot) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, s); err != nil {
		return "", err
	}
	return b.String(), nil
}
