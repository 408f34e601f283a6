package sources_test

import (
	"blogroll/config"
	"blogroll/models"
	"blogroll/sources"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHostOf(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{name: "plain https", url: "https://blog.example.com/feed.xml", expected: "blog.example.com"},
		{name: "port is dropped", url: "http://localhost:8080/rss", expected: "localhost"},
		{name: "upper case host", url: "https://Blog.Example.COM/", expected: "blog.example.com"},
		{name: "surrounding space", url: "  https://a.dev/atom ", expected: "a.dev"},
		{name: "relative", url: "/feed.xml", wantErr: true},
		{name: "ftp scheme", url: "ftp://a.dev/feed", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host, err := sources.HostOf(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, host)
		})
	}
}

func TestNewRegistry(t *testing.T) {
	reg, err := sources.New([]config.TomlSource{
		{Name: "Alice", URL: "https://alice.example.com/feed.xml", Avatar: "alice.png"},
		{Name: "Bob", URL: "https://blog.example.com/rss"},
		{Name: "Bob again", URL: "https://blog.example.com/other.xml"},
	})
	require.NoError(t, err)

	all := reg.All()
	require.Len(t, all, 3)
	assert.Equal(t, 3, reg.Len())
	assert.Equal(t, "alice.example.com", all[0].Host)
	assert.Equal(t, "alice.png", all[0].Avatar)
	assert.Equal(t, models.DefaultAvatar, all[1].Avatar)
	assert.Equal(t, "/avatars/"+models.DefaultAvatar, all[1].AvatarPath())
	assert.Equal(t, "https://blog.example.com", all[1].BlogURL())

	// All hands out a copy
	all[0].Name = "changed"
	assert.Equal(t, "Alice", reg.All()[0].Name)
}

func TestNewRegistryInvalid(t *testing.T) {
	_, err := sources.New([]config.TomlSource{{Name: "", URL: "https://a.dev"}})
	assert.Error(t, err)

	_, err = sources.New([]config.TomlSource{{Name: "A", URL: "not a url"}})
	assert.Error(t, err)
}

func TestByHost(t *testing.T) {
	reg, err := sources.New([]config.TomlSource{
		{Name: "Alice", URL: "https://alice.example.com/feed.xml"},
		{Name: "Bob", URL: "https://blog.example.com/rss"},
		{Name: "Bob again", URL: "https://blog.example.com/other.xml"},
	})
	require.NoError(t, err)

	matched := reg.ByHost("BLOG.example.com")
	require.Len(t, matched, 2)
	assert.Equal(t, "Bob", matched[0].Name)
	assert.Equal(t, "Bob again", matched[1].Name)

	assert.Empty(t, reg.ByHost("unknown.example.com"))
}

func TestViews(t *testing.T) {
	reg, err := sources.New([]config.TomlSource{{Name: "Alice", URL: "https://alice.example.com/feed.xml"}})
	require.NoError(t, err)

	views := reg.Views()
	require.Len(t, views, 1)
	assert.Equal(t, models.SourceView{
		Name:       "Alice",
		URL:        "https://alice.example.com/feed.xml",
		Host:       "alice.example.com",
		AvatarPath: "/avatars/kaonashi.jpg",
		BlogURL:    "https://alice.example.com",
	}, views[0])
}
