package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDiff = `diff --git a/main.go b/main.go
new file mode 100644
index 0000000..e69de29
--- /dev/null
+++ b/main.go
@@ -0,0 +1,3 @@
+package main
+
+func main() {}
diff --git a/README.md b/README.md
index 1111111..2222222 100644
--- a/README.md
+++ b/README.md
@@ -1,2 +1,2 @@
 # Title
-old line
+new line
diff --git a/old.txt b/old.txt
deleted file mode 100644
index 3333333..0000000
--- a/old.txt
+++ /dev/null
@@ -1 +0,0 @@
-gone
`

func TestSummarize(t *testing.T) {
	summary, err := Summarize(sampleDiff)
	require.NoError(t, err)
	require.Len(t, summary.Files, 3)

	assert.Equal(t, FileStat{Path: "main.go", ChangeType: ChangeTypeAdded, Language: "Go", Added: 3}, summary.Files[0])

	readme := summary.Files[1]
	assert.Equal(t, "README.md", readme.Path)
	assert.Equal(t, ChangeTypeModified, readme.ChangeType)
	assert.Equal(t, 1, readme.Added)
	assert.Equal(t, 1, readme.Deleted)

	deleted := summary.Files[2]
	assert.Equal(t, "old.txt", deleted.Path)
	assert.Equal(t, ChangeTypeDeleted, deleted.ChangeType)
	assert.Equal(t, 1, deleted.Deleted)

	assert.Equal(t, 4, summary.Added)
	assert.Equal(t, 2, summary.Deleted)
}

func TestSummarize_Empty(t *testing.T) {
	summary, err := Summarize("")
	require.NoError(t, err)
	assert.Empty(t, summary.Files)
	assert.Zero(t, summary.Added)
}
