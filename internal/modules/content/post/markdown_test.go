package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformHeadings(t *testing.T) {
	assert.Equal(t, `<h1 id="title">Title</h1>`, Transform("# Title"))
	assert.Equal(t, `<h2 id="my-section">My Section!</h2>`, Transform("## My Section!"))
	assert.Equal(t, `<h3 id="deep-dive">Deep   Dive</h3>`, Transform("### Deep   Dive"))
	assert.Equal(t, `<p>#### not a heading</p>`, Transform("#### not a heading"))
}

func TestTransformCodeFence(t *testing.T) {
	in := "```go\nfmt.Println(\"<hi>\") // **no bold**\n```\nafter"
	want := "<pre><code class=\"language-go\">fmt.Println(&#34;&lt;hi&gt;&#34;) // **no bold**</code></pre>\n<p>after</p>"
	assert.Equal(t, want, Transform(in))

	assert.Equal(t, "<pre><code>x\n\ny</code></pre>", Transform("```\nx\n\ny"))
}

func TestTransformLists(t *testing.T) {
	in := "- one\n- **two**\n\n- three\nend\n1. first\n2. second"
	want := "<ul>\n<li>one</li>\n<li><strong>two</strong></li>\n<li>three</li>\n</ul>\n" +
		"<p>end</p>\n<ol>\n<li>first</li>\n<li>second</li>\n</ol>"
	assert.Equal(t, want, Transform(in))
}

func TestTransformInline(t *testing.T) {
	got := Transform("A **bold** and *em* with `a<b>` and [link](https://x.dev).")
	assert.Equal(t, `<p>A <strong>bold</strong> and <em>em</em> with <code>a&lt;b&gt;</code> and <a href="https://x.dev">link</a>.</p>`, got)
}

func TestTransformCodeSpansStayLiteral(t *testing.T) {
	assert.Equal(t, "<p>use <code>a*b*c</code> here</p>", Transform("use `a*b*c` here"))
	assert.Equal(t, "<li><code>**x**</code> and <strong>y</strong></li>",
		strings.Split(Transform("- `**x**` and **y**"), "\n")[1])
	assert.Equal(t, "<p><code>[t](u)</code> vs <a href=\"u\">t</a></p>", Transform("`[t](u)` vs [t](u)"))
}

func TestTransformDropsBlankLines(t *testing.T) {
	assert.Equal(t, "<p>a</p>\n<p>b</p>", Transform("a\n\n\r\n   \nb\n"))
	assert.Equal(t, "", Transform("\n\n"))
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Title":                 "title",
		"My Section!":           "my-section",
		"  Hello,   World  ":    "hello-world",
		"Go 1.24 -- what's new": "go-124----whats-new",
		"Ünïcode Straße":        "ünïcode-straße",
		"???":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
		assert.Equal(t, Slugify(in), Slugify(in))
	}
}
