package analyzer

import "testing"

func TestExtract(t *testing.T) {
	page := `<html><head>
		<title>  First  </title><title>Second</title>
		<meta name="description" content="">
	</head><body>
		<h1>One</h1><h2>A</h2><h2>B</h2>
		<img src="a.png" alt="A"><img src="b.png"><img src="c.png" alt="">
		<p>Hello<b>World</b></p><p>Next   paragraph</p>
		<a href="/about">About</a>
		<a href="contact.html">Contact</a>
		<a href="https://shop.example/cart">Cart</a>
		<a href="HTTPS://SHOP.EXAMPLE/home">Home</a>
		<a href="//cdn.other.example/x">CDN</a>
		<a href="https://other.example/">Other</a>
		<a>No href</a>
		<style>.x{color:red}</style>
	</body></html>`

	facts := Extract("https://shop.example/products", page)

	if facts.Title != "First" {
		t.Errorf("Expected title %q, got %q", "First", facts.Title)
	}
	if facts.MetaDescription == nil || *facts.MetaDescription != "" {
		t.Errorf("Expected empty but present meta description, got %v", facts.MetaDescription)
	}
	if facts.H1Count != 1 || facts.H2Count != 2 {
		t.Errorf("Expected 1 h1 and 2 h2, got %d and %d", facts.H1Count, facts.H2Count)
	}
	if len(facts.Images) != 3 {
		t.Fatalf("Expected 3 images, got %d", len(facts.Images))
	}
	if facts.ImagesWithoutAlt() != 2 {
		t.Errorf("Expected 2 images without alt text, got %d", facts.ImagesWithoutAlt())
	}
	if facts.Images[1].Alt != "" || facts.Images[1].Src != "b.png" {
		t.Errorf("Unexpected image %+v", facts.Images[1])
	}

	wantInternal := []bool{true, true, true, true, false, false}
	if len(facts.Links) != len(wantInternal) {
		t.Fatalf("Expected %d links, got %d", len(wantInternal), len(facts.Links))
	}
	for i, want := range wantInternal {
		if facts.Links[i].Internal != want {
			t.Errorf("Link %q: expected internal=%v", facts.Links[i].Href, want)
		}
	}
	if facts.Links[0].Text != "About" {
		t.Errorf("Expected link text About, got %q", facts.Links[0].Text)
	}

	want := "one a b helloworld next paragraph about contact cart home cdn other no href"
	if facts.BodyText != want {
		t.Errorf("Expected body text %q, got %q", want, facts.BodyText)
	}
}

func TestExtractMissingElements(t *testing.T) {
	facts := Extract("https://example.com", "<p>just text")

	if facts.Title != "" {
		t.Errorf("Expected empty title, got %q", facts.Title)
	}
	if facts.MetaDescription != nil {
		t.Errorf("Expected nil meta description, got %q", *facts.MetaDescription)
	}
	if facts.BodyText != "just text" {
		t.Errorf("Expected body text %q, got %q", "just text", facts.BodyText)
	}
}

func TestExtractWithUnparsableBaseURL(t *testing.T) {
	facts := Extract("::not a url", `<a href="/root">r</a><a href="page.html">p</a>`)

	if !facts.Links[0].Internal {
		t.Error("Root-relative link should be internal")
	}
	if facts.Links[1].Internal {
		t.Error("Relative link cannot be classified without a base URL")
	}
}

func TestExtractInlineMarkupKeepsWords(t *testing.T) {
	tests := []struct {
		name string
		page string
		want string
	}{
		{"inline bold", `<p>best<b>seo</b> tips</p>`, "bestseo tips"},
		{"inline link", `<p>see <a href="/x">our</a>shop</p>`, "see ourshop"},
		{"adjacent blocks", `<div>one</div><div>two</div>`, "one two"},
		{"line break", `first<br>second`, "first second"},
		{"list items", `<ul><li>a</li><li>b</li></ul>`, "a b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := Extract("https://example.com", tt.page)
			if facts.BodyText != tt.want {
				t.Errorf("Expected body text %q, got %q", tt.want, facts.BodyText)
			}
		})
	}

	facts := Extract("https://example.com", `<p>best<b>seo</b> tips</p>`)
	if n := WordCount(facts.BodyText); n != 2 {
		t.Errorf("Expected 2 words, got %d", n)
	}
	if n := CountKeywords(facts.BodyText, []string{"seo"})["seo"]; n != 0 {
		t.Errorf("Expected seo not to match inside bestseo, got %d", n)
	}
}

func TestEmptyAltCountsAsMissing(t *testing.T) {
	facts := Extract("https://example.com/", `<html><head><title>T</title>
		<meta name="description" content="D"></head><body>
		<h1>H</h1><img src="a.png" alt=""><img src="b.png" alt="">
		<a href="/in">in</a><a href="https://ext.example/">out</a>
		</body></html>`)

	result := BuildSeoScanResult("https://example.com/", facts)

	if result.Images.WithoutAlt != 2 {
		t.Errorf("Expected 2 images without alt, got %d", result.Images.WithoutAlt)
	}
	if result.Score != 96 {
		t.Errorf("Expected score 96, got %d", result.Score)
	}
	if len(result.Issues) != 1 || result.Issues[0] != "2 images missing alt text" {
		t.Errorf("Expected alt text issue, got %v", result.Issues)
	}
}
