// Package redirect turns a gateway's redirect requirement into a
// client-facing HTTP action: a direct 302 for GET redirects, or a
// synthesized self-submitting form for POST redirects.
package redirect

import (
	"errors"
	"fmt"
	"html"
	"net/http"
	"sort"
	"strings"

	"github.com/hostedpay/payflow/internal/gateway"
)

var (
	// ErrNoRedirect means an instruction was requested for an outcome that
	// does not actually require redirection.
	ErrNoRedirect = errors.New("gateway outcome does not require redirection")

	// ErrUnsupportedRedirectMethod indicates a gateway integration bug: the
	// endpoint asked for a redirect method other than GET or POST.
	ErrUnsupportedRedirectMethod = errors.New("unsupported redirect method")
)

// Instruction tells the HTTP layer how to hand the user's browser over to
// the off-site gateway.
type Instruction struct {
	Method string
	URL    string
	Fields map[string]string
}

// FromResult normalizes the redirect requirement of a gateway result.
func FromResult(res *gateway.Result) (*Instruction, error) {
	if res == nil || !res.RedirectRequired {
		return nil, ErrNoRedirect
	}

	switch res.RedirectMethod {
	case http.MethodGet, http.MethodPost:
		return &Instruction{
			Method: res.RedirectMethod,
			URL:    res.RedirectURL,
			Fields: res.RedirectFields,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedRedirectMethod, res.RedirectMethod)
	}
}

// Write emits the instruction as an HTTP response: a 302 Location redirect
// for GET, or a 200 text/html self-submitting form for POST.
func (in *Instruction) Write(w http.ResponseWriter, r *http.Request) {
	if in.Method == http.MethodGet {
		w.Header().Set("Location", in.URL)
		w.WriteHeader(http.StatusFound)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(in.FormDocument()))
}

// FormDocument renders the self-submitting form. Field names, values and
// the target URL originate from a third party and are rendered as markup,
// so every one of them is HTML-entity-escaped before embedding.
func (in *Instruction) FormDocument() string {
	keys := make([]string, 0, len(in.Fields))
	for k := range in.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var hidden strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&hidden, "\t\t<input type=\"hidden\" name=\"%s\" value=\"%s\" />\n",
			html.EscapeString(k), html.EscapeString(in.Fields[k]))
	}

	return fmt.Sprintf(formDocument, html.EscapeString(in.URL), hidden.String())
}

const formDocument = `<!DOCTYPE html>
<html>
<head>
	<meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
	<title>Redirecting to payment</title>
</head>
<body onload="document.forms[0].submit();">
	<p>You are being redirected to complete your payment.</p>
	<form action="%s" method="post">
%s		<input type="submit" value="Click here if you are not redirected automatically" />
	</form>
</body>
</html>
`
