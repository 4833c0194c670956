package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testBlacklist = []string{
	"example.com", "sentry.io", ".png", "noreply",
}

func TestEmails_RegexAndMailto(t *testing.T) {
	e := NewExtractor(testBlacklist, nil)

	html := `<html><body>
		<p>Reach us at Info@AcmeCollision.com or call.</p>
		<a href="mailto:sales@acmecollision.com?subject=Quote">Email sales</a>
	</body></html>`

	got := e.Emails(html)

	assert.Equal(t, []string{"info@acmecollision.com", "sales@acmecollision.com"}, got)
}

func TestEmails_Deduplicated(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `info@acme.com INFO@ACME.COM <a href="mailto:info@acme.com">mail</a>`

	assert.Equal(t, []string{"info@acme.com"}, e.Emails(html))
}

func TestEmails_BlacklistFiltered(t *testing.T) {
	e := NewExtractor(testBlacklist, nil)

	html := `test@example.com noreply@acme.com logo@2x.png.com foo@realcompany.com`

	assert.Equal(t, []string{"foo@realcompany.com"}, e.Emails(html))
}

func TestEmails_None(t *testing.T) {
	e := NewExtractor(nil, nil)

	assert.Empty(t, e.Emails("<html><body>No contact info here.</body></html>"))
}

func TestPhones_Normalized(t *testing.T) {
	e := NewExtractor(nil, nil)

	tests := []struct {
		html string
		want string
	}{
		{"Call (512) 555-0134 today", "5125550134"},
		{"Call 512-555-0134 today", "5125550134"},
		{"Call 512.555.0134 today", "5125550134"},
		{"Call +1 (512) 555-0134 today", "5125550134"},
		{"Call +1-512-555-0134 today", "5125550134"},
	}

	for _, tt := range tests {
		got := e.Phones(tt.html)
		assert.Equal(t, []string{tt.want}, got, "html: %s", tt.html)
	}
}

func TestPhones_Deduplicated(t *testing.T) {
	e := NewExtractor(nil, nil)

	// Same number in two formats collapses to one entry.
	got := e.Phones("(512) 555-0134 or 512-555-0134")

	assert.Equal(t, []string{"5125550134"}, got)
}

func TestFormatPhone(t *testing.T) {
	assert.Equal(t, "(512) 555-0134", FormatPhone("5125550134"))
	assert.Equal(t, "12345", FormatPhone("12345"))
}

func TestBusinessName_Priority(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<html><head>
		<meta property="og:site_name" content="Acme Collision">
		<meta property="og:title" content="Home - Acme Collision">
		<title>Acme Collision | Austin Auto Body</title>
	</head><body><h1>Welcome</h1></body></html>`

	assert.Equal(t, "Acme Collision", e.BusinessName(html, "https://acmecollision.com"))
}

func TestBusinessName_TitleSeparatorTrimmed(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<html><head><title>Joe's Body Shop | Austin TX</title></head></html>`

	assert.Equal(t, "Joe's Body Shop", e.BusinessName(html, "https://joesbodyshop.com"))
}

func TestBusinessName_H1Fallback(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<html><body><h1>Smith Plumbing</h1></body></html>`

	assert.Equal(t, "Smith Plumbing", e.BusinessName(html, "https://smithplumbing.com"))
}

func TestBusinessName_HostnameFallback(t *testing.T) {
	e := NewExtractor(nil, nil)

	got := e.BusinessName("<html></html>", "https://www.joes-body-shop.com/contact")

	assert.Equal(t, "Joes Body Shop", got)
}

func TestBusinessName_OverlongCandidateSkipped(t *testing.T) {
	e := NewExtractor(nil, nil)

	long := make([]byte, 120)
	for i := range long {
		long[i] = 'x'
	}
	html := `<html><head><title>` + string(long) + `</title></head><body><h1>Acme</h1></body></html>`

	assert.Equal(t, "Acme", e.BusinessName(html, "https://acme.com"))
}

func TestAddress_StreetRegex(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<p>Visit us at 4500 Burnet Road, Austin, TX 78756 today.</p>`

	assert.Equal(t, "4500 Burnet Road, Austin, TX 78756", e.Address(html))
}

func TestAddress_Microdata(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<div itemscope itemtype="https://schema.org/LocalBusiness">
		<span itemprop="streetAddress">100 Main Street</span>
		<span itemprop="addressLocality">Austin</span>
		<span itemprop="addressRegion">TX</span>
		<span itemprop="postalCode">78701</span>
	</div>`

	assert.Equal(t, "100 Main Street, Austin, TX, 78701", e.Address(html))
}

func TestAddress_MicrodataRequiresLocality(t *testing.T) {
	e := NewExtractor(nil, nil)

	html := `<span itemprop="streetAddress">100 Main Street</span>`

	assert.Empty(t, e.Address(html))
}

func TestContactPageURLs(t *testing.T) {
	e := NewExtractor(nil, nil)

	got := e.ContactPageURLs("https://acme.com/some/deep/page?x=1")

	assert.Equal(t, []string{
		"https://acme.com/contact",
		"https://acme.com/contact-us",
		"https://acme.com/about",
		"https://acme.com/about-us",
		"https://acme.com/team",
		"https://acme.com/staff",
	}, got)
}

func TestContactPageURLs_CustomPaths(t *testing.T) {
	e := NewExtractor(nil, []string{"/kontakt"})

	assert.Equal(t, []string{"https://acme.de/kontakt"}, e.ContactPageURLs("https://acme.de"))
}

func TestContactPageURLs_UnparsableBase(t *testing.T) {
	e := NewExtractor(nil, nil)

	assert.Empty(t, e.ContactPageURLs("not a url"))
	assert.Empty(t, e.ContactPageURLs("/relative/only"))
}

func TestContact_AllFields(t *testing.T) {
	e := NewExtractor(testBlacklist, nil)

	html := `<html><head><title>Acme Collision | Home</title></head><body>
		<a href="mailto:info@acmecollision.com">Email</a>
		<p>Call (512) 555-0134</p>
		<p>4500 Burnet Road, Austin, TX 78756</p>
	</body></html>`

	got := e.Contact(html, "https://acmecollision.com")

	assert.Equal(t, []string{"info@acmecollision.com"}, got.Emails)
	assert.Equal(t, []string{"5125550134"}, got.Phones)
	assert.Equal(t, "Acme Collision", got.BusinessName)
	assert.Equal(t, "4500 Burnet Road, Austin, TX 78756", got.Address)
}
