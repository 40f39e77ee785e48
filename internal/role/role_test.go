package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommandRole(t *testing.T) {
	out := Process("Run {command}`ls -la` now.", nil)
	assert.Contains(t, out, `<code class="command">ls -la</code>`)
}

func TestOptionRoleKnown(t *testing.T) {
	lookup := &Lookup{KnownOptions: map[string]struct{}{"services.nginx.enable": {}}}
	out := Process("See {option}`services.nginx.enable`.", lookup)
	assert.Contains(t, out, `href="options.html#option-services-nginx-enable"`)
}

func TestOptionRoleUnknownNoLink(t *testing.T) {
	lookup := &Lookup{KnownOptions: map[string]struct{}{}}
	out := Process("See {option}`services.foo.enable`.", lookup)
	assert.NotContains(t, out, "option-reference")
	assert.Contains(t, out, `<code class="nixos-option">services.foo.enable</code>`)
}

func TestManpageRoleKnownURL(t *testing.T) {
	lookup := &Lookup{ManpageURLs: map[string]string{"systemd.service(5)": "https://example.com/systemd.service.5"}}
	out := Process("See {manpage}`systemd.service(5)`.", lookup)
	assert.Contains(t, out, `<a class="manpage-reference" href="https://example.com/systemd.service.5">`)
}

func TestManpageRoleUnknown(t *testing.T) {
	out := Process("See {manpage}`nothing.5`.", nil)
	assert.Contains(t, out, `<span class="manpage-reference">nothing.5</span>`)
}

func TestEmptyContentRejected(t *testing.T) {
	out := Process("x {command}`` y", nil)
	assert.Equal(t, "x {command}`` y", out)
}

func TestOtherRole(t *testing.T) {
	out := Process("{custom}`value`", nil)
	assert.Contains(t, out, `<span class="custom-markup">value</span>`)
}

func TestEscaping(t *testing.T) {
	out := Process("{var}`<script>`", nil)
	assert.Contains(t, out, "&lt;script&gt;")
}

func TestSkippedInFence(t *testing.T) {
	src := "```\n{command}`ls`\n```\n"
	out := Process(src, nil)
	assert.Contains(t, out, "{command}`ls`")
	assert.NotContains(t, out, "class=\"command\"")
}
