package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Int(42), "42"},
		{"negative int", Int(-100), "-100"},
		{"bool true", Bool(true), "true"},
		{"bool false", Bool(false), "false"},
		{"number", Number("37.5"), "37.5"},
		{"null", Null{}, "null"},
		{"empty list", List{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"list of strings", Strings("A", "B"), `["A","B"]`},
		{"simple object", Object{"a": Int(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := Object{
		"targetName":  String("Test1"),
		"initial":     Object{},
		"externalKey": String("XMSYNC_Test1"),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"externalKey":"XMSYNC_Test1","initial":{},"targetName":"Test1"}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before 0xE000 in UTF-16 but after it in UTF-8.
	obj := Object{
		"\uE000":     Int(1),
		"\U00010000": Int(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(String("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	// "e" + combining acute accent normalizes to a single U+00E9.
	result, err := MarshalCanonical(String("e\u0301"))
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(String("a\u2028b"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(String(`a\u2028b`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028b"`, string(result))
}

func TestRecordHashStable(t *testing.T) {
	a := Object{"targetName": String("Test1"), "initial": Object{}}
	b := Object{"initial": Object{}, "targetName": String("Test1")}

	ha, err := RecordHash(a)
	require.NoError(t, err)
	assert.Len(t, ha, 64)
	assert.Equal(t, ha, MustRecordHash(b))

	c := Object{"targetName": String("Test2"), "initial": Object{}}
	assert.NotEqual(t, ha, MustRecordHash(c))
}

func TestConfigHashDomainSeparated(t *testing.T) {
	data := []byte(`{"groups":{}}`)
	assert.Equal(t, ConfigHash(data), ConfigHash(data))
	assert.NotEqual(t, ConfigHash(data), hashWithDomain(DomainRecord, data))
}
