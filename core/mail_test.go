package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/trezcool/amal/fs"
)

func TestParseTemplates(t *testing.T) {
	cache, err := parseTemplates(appfs.FS, true)
	require.NoError(t, err)

	entry, ok := cache["password_reset"]
	require.True(t, ok)
	assert.NotNil(t, entry.text)
	assert.NotNil(t, entry.html)
	_, ok = cache["_base"]
	assert.False(t, ok, "layouts are not templates of their own")
}

func TestEmailMessage_Render(t *testing.T) {
	conf := &Config{AppName: "Amal", FrontendBaseURL: "https://amal.test", TestMode: true}

	tests := []struct {
		name     string
		msg      EmailMessage
		wantText []string
		wantHTML []string
		wantErr  bool
	}{
		{name: "plain body", msg: EmailMessage{BodyStr: "salam"}, wantText: []string{"salam"}},
		{name: "no content", msg: EmailMessage{}},
		{
			name: "password reset",
			msg: EmailMessage{
				TemplateName: "password_reset",
				TemplateData: map[string]interface{}{"Email": "aisha@example.com", "UID": "dWlk", "Token": "tok-1"},
			},
			wantText: []string{
				"Assalamu'alaikum",
				"your Amal account (aisha@example.com)",
				"https://amal.test/reset-password?uid=dWlk&token=tok-1",
				"The Amal team",
			},
			wantHTML: []string{"<!DOCTYPE html>", "aisha@example.com", "Choose a new password", "&mdash; The Amal team"},
		},
		{name: "unknown template", msg: EmailMessage{TemplateName: "lol"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Render(conf)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, s := range tt.wantText {
				assert.Contains(t, tt.msg.TextContent, s)
			}
			for _, s := range tt.wantHTML {
				assert.Contains(t, tt.msg.HTMLContent, s)
			}
			if len(tt.wantHTML) == 0 {
				assert.Empty(t, tt.msg.HTMLContent)
			}
		})
	}
}
