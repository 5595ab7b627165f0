package kbbuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHeadingsOpenSections(t *testing.T) {
	md := `# دورات المياه
يجب توفر نافذة أو وسيلة تهوية ميكانيكية في كل دورة مياه داخل الوحدة السكنية.

## الصرف الصحي
تزود كل وحدة سكنية بمطبخ يحتوي على حوض غسيل متصل بشبكة الصرف الصحي للمبنى.
`
	chunks := NewSplitter(0, -1).Split(md, "SBC1101", "OCR")

	require.Len(t, chunks, 2)
	assert.Equal(t, "دورات المياه", chunks[0].Section)
	assert.Equal(t, "الصرف الصحي", chunks[1].Section)
	assert.Equal(t, 0, chunks[0].ChunkID)
	assert.Equal(t, 1, chunks[1].ChunkID)
	assert.Equal(t, "SBC1101", chunks[0].DocID)
	assert.Equal(t, "OCR", chunks[0].Source)
	assert.NotEmpty(t, chunks[0].TextNorm)
}

func TestSplitSBCClauseHeadings(t *testing.T) {
	md := `407-2 التهوية الطبيعية للفراغات
تكون التهوية الطبيعية للفراغات عن طريق نوافذ أو أبواب أو فتحات مطلة على الخارج مباشرة.
`
	chunks := NewSplitter(0, -1).Split(md, "D", "S")

	require.Len(t, chunks, 1)
	assert.Equal(t, "التهوية الطبيعية للفراغات", chunks[0].Section)
}

func TestSplitPageMarkers(t *testing.T) {
	md := `Page: 7

# القسم الأول
نص القسم الأول بطول كافٍ ليتم اعتباره كتلة مستقلة ضمن المستند.

الصفحة 12

# القسم الثاني
نص القسم الثاني بطول كافٍ ليتم اعتباره كتلة مستقلة ضمن المستند.
`
	chunks := NewSplitter(0, -1).Split(md, "D", "S")

	require.Len(t, chunks, 2)
	require.NotNil(t, chunks[0].Page)
	assert.Equal(t, 7, *chunks[0].Page)
	require.NotNil(t, chunks[1].Page)
	assert.Equal(t, 12, *chunks[1].Page)
}

func TestSplitShortBlocksDropped(t *testing.T) {
	md := `# عنوان
قصير جدا

# عنوان آخر
هذا النص طويل بما يكفي ليشكل كتلة صالحة للفهرسة في قاعدة المعرفة.
`
	chunks := NewSplitter(0, -1).Split(md, "D", "S")

	require.Len(t, chunks, 1)
	assert.Equal(t, "عنوان آخر", chunks[0].Section)
}

func TestSplitLongBlockOverlap(t *testing.T) {
	body := strings.Repeat("كلمة نصية متكررة ", 40) // well over 200 runes
	md := "# فصل طويل\n" + body + "\n"
	chunks := NewSplitter(200, 50).Split(md, "D", "S")

	require.Greater(t, len(chunks), 1)
	for i, ch := range chunks {
		assert.Equal(t, "فصل طويل", ch.Section)
		assert.Equal(t, i, ch.ChunkID)
		assert.LessOrEqual(t, len([]rune(ch.Text)), 200)
	}
	// Adjacent chunks share the overlap region.
	first := []rune(chunks[0].Text)
	tail := string(first[len(first)-20:])
	assert.Contains(t, chunks[1].Text, strings.TrimSpace(tail))
}

func TestSplitDerivedSectionFromFirstLine(t *testing.T) {
	md := `تمهيد عام يشرح نطاق تطبيق هذه الاشتراطات على المباني السكنية.
بقية الفقرة تستمر في وصف التفاصيل المرتبطة بالتطبيق والالتزام.
`
	chunks := NewSplitter(0, -1).Split(md, "D", "S")

	require.Len(t, chunks, 1)
	assert.Equal(t, "تمهيد عام يشرح نطاق تطبيق هذه الاشتراطات على المباني السكنية.", chunks[0].Section)
}

func TestSplitStripsFencedCode(t *testing.T) {
	md := "# قسم\nنص تمهيدي كافٍ قبل الشيفرة المضمنة في المستند.\n```\nignored code block\n```\n"
	chunks := NewSplitter(0, -1).Split(md, "D", "S")

	require.Len(t, chunks, 1)
	assert.NotContains(t, chunks[0].Text, "ignored code block")
}
