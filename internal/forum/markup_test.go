package forum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"paragraph", "<p>a</p>", "a"},
		{"paragraphs", "<p>one</p><p>two</p>", "one\n\ntwo"},
		{"line break", "<p>one<br>two</p>", "one\ntwo"},
		{"emphasis", "<p><em>soft</em> and <strong>loud</strong></p>", "*soft* and **loud**"},
		{"inline code", "<p>run <code>go  test</code></p>", "run `go  test`"},
		{"code block", "<pre><code>func main() {\n    x := 1\n}\n</code></pre>", "```\nfunc main() {\n    x := 1\n}\n```"},
		{"link", `<p><a href="https://x.test/a" rel="ugc nofollow">docs</a></p>`, "[docs](https://x.test/a)"},
		{"bare link", `<a href="https://x.test">https://x.test</a>`, "https://x.test"},
		{"mention", `<a href="https://forum.test/u/alf" class="UserMention">@Alf</a> hi`, "[@Alf](https://forum.test/u/alf) hi"},
		{"ordered list", "<ol><li>a</li><li>b</li></ol>", "1. a\n2. b"},
		{"paragraph items", "<ul><li><p>one</p></li><li><p>two</p></li></ul>", "- one\n- two"},
		{"nested list", "<ul><li>a<ul><li>b</li></ul></li><li>c</li></ul>", "- a\n  - b\n- c"},
		{"nested ordered list", "<ol><li><p>a</p><ol><li>b</li></ol></li></ol>", "1. a\n\n   1. b"},
		{"loose item", "<ol><li><p>first</p><p>more</p></li><li>second</li></ol>", "1. first\n\n   more\n2. second"},
		{"code in item", "<ul><li><pre><code>x\n  y</code></pre></li></ul>", "-\n  ```\n  x\n    y\n  ```"},
		{"list after text", "<p>intro</p><ul><li>a</li></ul><p>outro</p>", "intro\n\n- a\n\noutro"},
		{"heading", "<h2>Title</h2><p>text</p>", "## Title\n\ntext"},
		{"quote", "<blockquote class=\"uncited\"><div><p>x</p><p>y</p></div></blockquote>", "> x\n>\n> y"},
		{"image", `<img src="https://x.test/cat.png" alt="cat">`, "![cat](https://x.test/cat.png)"},
		{"entities", "<p>fish &amp; chips</p>", "fish & chips"},
		{"escaped tags", "<p>use &lt;b&gt;bold&lt;/b&gt; tags</p>", `use \<b>bold\</b> tags`},
		{"escaped tags in code", "<p><code>&lt;b&gt;</code></p>", "`<b>`"},
		{"script dropped", "<p>ok</p><script>alert(1)</script>", "ok"},
		{"whitespace collapsed", "<p>  spaced\n   out  </p>", "spaced out"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToMarkdown(tt.in))
		})
	}
}
