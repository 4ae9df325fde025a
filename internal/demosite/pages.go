package demosite

// Page is one servable demo page: body, response headers and cookies.
type Page struct {
	Path        string
	ContentType string
	Headers     map[string]string
	Cookies     []Cookie
	Body        string
}

type Cookie struct {
	Name  string
	Value string
}

// Pages returns the built-in demo scenarios. Each one exercises a different
// detection path: kit fingerprints, credential harvesting, minimal landing
// pages and a credible legitimate site.
func Pages() []Page {
	return []Page{
		{
			// Gophish-style landing: rid parameter, vendor headers and
			// the hidden rid input.
			Path:        "/gophish",
			ContentType: "text/html",
			Headers: map[string]string{
				"X-Gophish-Contact":   "admin@demo.test",
				"X-Gophish-Signature": "demo",
			},
			Body: `<!DOCTYPE html>
<html><head><title>Document Portal</title></head>
<body>
<form method="POST" action="/gophish/submit?rid=Abc123">
  <input type="hidden" name="rid" value="Abc123">
  <input type="text" name="username" placeholder="Username">
  <input type="password" name="password" placeholder="Password">
  <button type="submit">Sign In</button>
</form>
</body></html>`,
		},
		{
			// Bare credential harvest page with almost no content.
			Path:        "/harvest",
			ContentType: "text/html",
			Body: `<!DOCTYPE html>
<html><head><title></title></head>
<body>
<form method="POST" action="/harvest/collect">
  <input type="email" name="email">
  <input type="password" name="password">
  <button>Verify Account</button>
</form>
</body></html>`,
		},
		{
			// Evilginx-style session cookie.
			Path:        "/proxy",
			ContentType: "text/html",
			Cookies: []Cookie{
				{Name: "ew_session", Value: "deadbeef"},
			},
			Body: `<!DOCTYPE html>
<html><head><title>Sign in to your account</title></head>
<body>
<form method="POST" action="/proxy/login">
  <input type="text" name="login">
  <input type="password" name="passwd">
</form>
</body></html>`,
		},
		{
			// A credible page: real title, plenty of links and images.
			Path:        "/corporate",
			ContentType: "text/html",
			Body: `<!DOCTYPE html>
<html><head><title>Acme Corporation - Industrial Supplies</title></head>
<body>
<nav>
<a href="/corporate">Home</a> <a href="/about">About</a> <a href="/products">Products</a>
<a href="/catalog">Catalog</a> <a href="/news">News</a> <a href="/careers">Careers</a>
<a href="/support">Support</a> <a href="/contact">Contact</a> <a href="/legal">Legal</a>
<a href="/privacy">Privacy</a> <a href="/terms">Terms</a> <a href="/blog">Blog</a>
</nav>
<img src="/static/hero.png"><img src="/static/plant.png"><img src="/static/team.png">
<p>Acme Corporation has supplied industrial equipment since 1962.</p>
<iframe src="/static/map.html"></iframe>
</body></html>`,
		},
	}
}
