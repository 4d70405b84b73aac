package analyzer

import "testing"

func TestCheckCitations(t *testing.T) {
	facts := Extract("https://acme.example/", `<body>
		<a href="https://www.facebook.com/first">fb</a>
		<a href="https://www.facebook.com/second">fb</a>
		<a href="https://business.google.com/x">not a business profile link</a>
		<a href="https://www.google.com/business/acme">google</a>
		<a href="https://WWW.LINKEDIN.COM/company/acme">li</a>
		<a href="https://x.com/acme">x</a>
	</body>`)

	citations, score := CheckCitations(facts.Links)

	if c := citations["facebook"]; !c.Found || c.URL != "https://www.facebook.com/first" {
		t.Errorf("Expected first facebook link, got %+v", c)
	}
	if c := citations["google"]; !c.Found || c.URL != "https://www.google.com/business/acme" {
		t.Errorf("Expected google business link, got %+v", c)
	}
	if c := citations["linkedin"]; !c.Found {
		t.Errorf("Expected linkedin found regardless of case, got %+v", c)
	}
	if c := citations["twitter"]; c.Found || c.URL != "" {
		t.Errorf("Expected twitter not found, got %+v", c)
	}
	if c := citations["instagram"]; c.Found {
		t.Errorf("Expected instagram not found, got %+v", c)
	}
	if score != 60 {
		t.Errorf("Expected score 60, got %d", score)
	}
}

func TestCheckCitationsNoLinks(t *testing.T) {
	citations, score := CheckCitations(nil)
	if score != 0 {
		t.Errorf("Expected score 0, got %d", score)
	}
	if len(citations) != 5 {
		t.Errorf("Expected all 5 platforms reported, got %d", len(citations))
	}
}

func TestCheckCitationsAllPlatforms(t *testing.T) {
	links := []Link{
		{Href: "https://google.com/business/a"},
		{Href: "https://facebook.com/a"},
		{Href: "https://twitter.com/a"},
		{Href: "https://linkedin.com/in/a"},
		{Href: "https://instagram.com/a"},
	}
	if _, score := CheckCitations(links); score != 100 {
		t.Errorf("Expected score 100, got %d", score)
	}
}
