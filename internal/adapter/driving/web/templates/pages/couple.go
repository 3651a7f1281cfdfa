// Package pages contains the web GUI page components.
package pages

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/lovejar/internal/adapter/driving/web/viewmodel"
)

// Couple renders the shared dashboard for one account and its partner.
func Couple(page vm.CoupleViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<header class="couple-header">`)
		writeAvatar(&b, page.PictureURL, page.DisplayName)
		b.WriteString(`<h1>` + templ.EscapeString(page.DisplayName))
		if page.Partner != nil {
			b.WriteString(` &amp; ` + templ.EscapeString(partnerName(page.Partner)))
			writeAvatar(&b, page.Partner.PictureURL, partnerName(page.Partner))
		}
		b.WriteString(`</h1></header>`)

		b.WriteString(`<section class="share"><p>Your code: <strong class="code">` + templ.EscapeString(page.Code) + `</strong></p>`)
		b.WriteString(`<img class="qr" alt="QR code for ` + templ.EscapeString(page.Code) + `" src="` + attrURL(page.QRPath) + `"></section>`)

		b.WriteString(`<section class="counter" data-counter-url="` + attrURL(page.CounterPath) + `">`)
		if err := Counter(page.Counter).Render(ctx, &b); err != nil {
			return err
		}
		b.WriteString(`</section>`)

		if page.NextAnniversary != nil {
			na := page.NextAnniversary
			b.WriteString(`<section class="next-anniversary"><h2>Next anniversary</h2>`)
			fmt.Fprintf(&b, `<p><time datetime="%s">%s</time>: %s together, %s</p></section>`,
				templ.EscapeString(na.Date), templ.EscapeString(na.Date),
				yearsLabel(na.Years), countdownLabel(na.DaysUntil))
		}

		b.WriteString(`<section class="jar"><h2>Idea jar</h2>`)
		b.WriteString(`<form method="post" action="` + attrURL(page.JarPath) + `">`)
		b.WriteString(`<input type="hidden" name="csrf_token" value="` + templ.EscapeString(page.CSRFToken) + `">`)
		b.WriteString(`<textarea name="text" maxlength="500" required placeholder="Drop an idea in the jar"></textarea>`)
		b.WriteString(`<button type="submit">Add</button></form>`)
		if len(page.JarItems) == 0 {
			b.WriteString(`<p class="empty">The jar is empty.</p>`)
		} else {
			b.WriteString(`<ul class="jar-items">`)
			for _, item := range page.JarItems {
				class := "theirs"
				if item.Mine {
					class = "mine"
				}
				fmt.Fprintf(&b, `<li class="%s" data-id="%d"><div class="jar-text">%s</div><small>%s</small></li>`,
					class, item.ID, item.HTML, templ.EscapeString(item.CreatedAt))
			}
			b.WriteString(`</ul>`)
		}
		b.WriteString(`</section>`)

		if page.IdeasEnabled {
			b.WriteString(`<section class="ideas" data-jar-url="` + attrURL(page.JarPath) + `">`)
			b.WriteString(`<button type="button" data-idea-url="/api/v1/ideas/date">Date idea</button>`)
			b.WriteString(`<button type="button" data-idea-url="/api/v1/ideas/question">Question for us</button>`)
			b.WriteString(`<p class="idea-output" aria-live="polite"></p>`)
			b.WriteString(`<button type="button" class="idea-to-jar" hidden>Add to jar</button></section>`)
		}

		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Counter renders the time-together widget. It is also served on its own so
// counter.js can refresh it.
func Counter(c vm.CounterViewModel) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var out string
		switch {
		case !c.Set:
			out = `<p class="counter-empty">Set your anniversary date to start the counter.</p>`
		case !c.Started:
			out = `<p class="counter-pending">Your story starts on ` + templ.EscapeString(c.Since) + `.</p>`
		default:
			out = fmt.Sprintf(`<p class="counter-value"><span>%d</span> days <span>%02d</span>:<span>%02d</span>:<span>%02d</span></p>`+
				`<p class="counter-since">together since %s</p>`,
				c.Days, c.Hours, c.Minutes, c.Seconds, templ.EscapeString(c.Since))
		}
		_, err := io.WriteString(w, out)
		return err
	})
}

func writeAvatar(b *strings.Builder, src, name string) {
	if src == "" {
		return
	}
	b.WriteString(`<img class="avatar" src="` + attrURL(src) + `" alt="` + templ.EscapeString(name) + `">`)
}

// attrURL sanitises u and escapes it for a double-quoted attribute value.
func attrURL(u string) string {
	return templ.EscapeString(string(templ.URL(u)))
}

func partnerName(p *vm.PartnerViewModel) string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return p.Handle
}

func countdownLabel(n int) string {
	switch n {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", n)
	}
}

func yearsLabel(n int) string {
	if n == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", n)
}
