package note

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/smart-extract/internal/domain"
)

func testFields() []domain.MetadataField {
	return []domain.MetadataField{
		{Key: "title", Type: domain.FieldTypeAI, Required: true},
		{Key: "summary", Type: domain.FieldTypeAI},
		{Key: "tags", Type: domain.FieldTypeAI},
		{Key: "created", Type: domain.FieldTypeSystem, SystemField: domain.SystemFieldCreated, Required: true},
		{Key: "modified", Type: domain.FieldTypeSystem, SystemField: domain.SystemFieldModified},
		{Key: "location", Type: domain.FieldTypeSystem, SystemField: domain.SystemFieldPath},
		{Key: "due", Type: domain.FieldTypeDate},
	}
}

func testInfo() SystemInfo {
	return SystemInfo{
		Path:     "notes/a.md",
		Created:  time.Date(2024, 1, 2, 10, 0, 0, 0, time.Local),
		Modified: time.Date(2024, 3, 4, 18, 30, 0, 0, time.Local),
	}
}

func TestMergeMetadata(t *testing.T) {
	content := "---\ntitle: Old\ncustom: keep\ndue: 2024/05/06\n---\n\n  Body  \n"
	ai := map[string]any{
		"title":   "New",
		"summary": "S",
		"tags":    []string{"x", "y"},
	}

	out, err := MergeMetadata(content, ai, testInfo(), MetadataOptions{
		Fields:     testFields(),
		DateFormat: "YYYY-MM-DD",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out, "---\n\nBody"))

	doc, err := Parse(out)
	require.NoError(t, err)
	fm := doc.Front

	assert.Equal(t, []string{"title", "custom", "due", "summary", "tags", "created", "modified", "location"}, fm.Keys())

	get := func(key string) any {
		v, ok := fm.Get(key)
		require.True(t, ok, key)
		return v
	}
	raw := func(key string) string {
		v, ok := fm.Raw(key)
		require.True(t, ok, key)
		return v
	}

	assert.Equal(t, "New", get("title"))
	assert.Equal(t, "keep", get("custom"))
	assert.Equal(t, "S", get("summary"))
	assert.Equal(t, []any{"x", "y"}, get("tags"))
	assert.Equal(t, "notes/a.md", get("location"))
	assert.Equal(t, "2024-01-02", raw("created"))
	assert.Equal(t, "2024-03-04", raw("modified"))
	assert.Equal(t, "2024-05-06", raw("due"))
	assert.NotContains(t, out, `"2024`)
}

func TestMergeMetadata_KeepsExistingCreated(t *testing.T) {
	content := "---\ncreated: 2020-07-08\n---\nBody"

	out, err := MergeMetadata(content, nil, testInfo(), MetadataOptions{
		Fields:     testFields(),
		DateFormat: "YYYY-MM-DD",
	})
	require.NoError(t, err)

	doc, err := Parse(out)
	require.NoError(t, err)
	created, _ := doc.Front.Raw("created")
	assert.Equal(t, "2020-07-08", created)
	assert.False(t, doc.Front.Has("title"), "missing AI values are not invented")
}

func TestMergeMetadata_Timestamps(t *testing.T) {
	info := testInfo()
	out, err := MergeMetadata("Body", nil, info, MetadataOptions{
		DateFormat:       "YYYY-MM-DD HH:mm",
		IncludeTimestamp: true,
	})
	require.NoError(t, err)

	doc, err := Parse(out)
	require.NoError(t, err)

	created, ok := doc.Front.Get(CreatedTimestampKey)
	require.True(t, ok)
	assert.EqualValues(t, info.Created.UnixMilli(), created)

	modified, ok := doc.Front.Get(ModifiedTimestampKey)
	require.True(t, ok)
	assert.EqualValues(t, info.Modified.UnixMilli(), modified)
	assert.Equal(t, "\nBody", doc.Body)
}

func TestMergeMetadata_InvalidFrontmatter(t *testing.T) {
	_, err := MergeMetadata("---\n[broken\n---\n", nil, testInfo(), MetadataOptions{})
	assert.ErrorIs(t, err, ErrInvalidFrontmatter)
}

func TestHasRequiredMetadata(t *testing.T) {
	fields := testFields()

	ok, err := HasRequiredMetadata("---\ntitle: T\ncreated: 2024-01-01\n---\n", fields)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = HasRequiredMetadata("---\ntitle: T\n---\n", fields)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = HasRequiredMetadata("---\ntitle: T\n---\n", []domain.MetadataField{{Key: "title", Type: domain.FieldTypeAI}})
	require.NoError(t, err)
	assert.False(t, ok, "nothing required means nothing is complete")

	_, err = HasRequiredMetadata("---\n[broken\n---\n", fields)
	assert.Error(t, err)
}

func TestGoLayout(t *testing.T) {
	tests := []struct {
		format string
		want   string
	}{
		{"YYYY-MM-DD", "2006-01-02"},
		{"YYYY-MM-DD HH:mm:ss", "2006-01-02 15:04:05"},
		{"YYYYMMDDHHmmss", "20060102150405"},
		{"DD MMM YYYY", "02 Jan 2006"},
		{"dddd, MMMM D", "Monday, January 2"},
		{"h:mm A", "3:04 PM"},
		{"[Week of] YYYY", "Week of 2006"},
	}

	for _, tc := range tests {
		t.Run(tc.format, func(t *testing.T) {
			assert.Equal(t, tc.want, GoLayout(tc.format))
		})
	}
}

func TestParseDate(t *testing.T) {
	got, ok := parseDate(" 2024-05-06 ", "2006-01-02")
	require.True(t, ok)
	assert.Equal(t, 6, got.Day())

	got, ok = parseDate("2024-05-06T07:08:09Z", "2006-01-02")
	require.True(t, ok)
	assert.Equal(t, 7, got.UTC().Hour())

	_, ok = parseDate("next tuesday", "2006-01-02")
	assert.False(t, ok)
}
