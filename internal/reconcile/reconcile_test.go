package reconcile

import (
	"errors"
	"testing"

	"github.com/gocarrot/xcodeframeworks/pbxproj"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fileKey struct {
	path string
	tree string
}

// memoryProject records files and the order they were added in.
type memoryProject struct {
	files   map[fileKey]int
	added   []string
	failOn  string
	failErr error
}

func newMemoryProject(existing ...fileKey) *memoryProject {
	p := &memoryProject{files: map[fileKey]int{}}
	for _, key := range existing {
		p.files[key]++
	}
	return p
}

func (p *memoryProject) HasFile(path, tree string) bool {
	return p.files[fileKey{path, tree}] > 0
}

func (p *memoryProject) AddFile(path, tree string) error {
	if path == p.failOn {
		return p.failErr
	}
	p.files[fileKey{path, tree}]++
	p.added = append(p.added, path)
	return nil
}

var allPaths = []string{
	"System/Library/Frameworks/SystemConfiguration.framework",
	"System/Library/Frameworks/Accounts.framework",
	"System/Library/Frameworks/Social.framework",
	"System/Library/Frameworks/AdSupport.framework",
	"usr/lib/libsqlite3.dylib",
}

func insertedPaths(inserted []Insertion) []string {
	paths := make([]string, 0, len(inserted))
	for _, insertion := range inserted {
		paths = append(paths, insertion.Path)
	}
	return paths
}

func TestDependencyPath(t *testing.T) {
	assert.Equal(t, "System/Library/Frameworks/Social.framework", Dependency{Name: "Social", Kind: Framework}.Path())
	assert.Equal(t, "usr/lib/libsqlite3.dylib", Dependency{Name: "libsqlite3", Kind: Library}.Path())
	assert.Equal(t, "framework", Framework.String())
	assert.Equal(t, "library", Library.String())
}

func TestReconcileEmptyProject(t *testing.T) {
	project := newMemoryProject()

	inserted, err := Reconcile(project, Required)
	require.NoError(t, err)
	assert.Equal(t, allPaths, insertedPaths(inserted))
	assert.Equal(t, allPaths, project.added)
	for _, insertion := range inserted {
		assert.Equal(t, SdkRoot, insertion.Tree)
		assert.True(t, project.HasFile(insertion.Path, SdkRoot))
	}
}

func TestReconcileSkipsPresent(t *testing.T) {
	project := newMemoryProject(fileKey{"System/Library/Frameworks/Accounts.framework", SdkRoot})

	inserted, err := Reconcile(project, Required)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"System/Library/Frameworks/SystemConfiguration.framework",
		"System/Library/Frameworks/Social.framework",
		"System/Library/Frameworks/AdSupport.framework",
		"usr/lib/libsqlite3.dylib",
	}, insertedPaths(inserted))
	assert.Equal(t, 1, project.files[fileKey{"System/Library/Frameworks/Accounts.framework", SdkRoot}])
}

func TestReconcileChecksTree(t *testing.T) {
	project := newMemoryProject(fileKey{"usr/lib/libsqlite3.dylib", "<group>"})

	inserted, err := Reconcile(project, Required)
	require.NoError(t, err)
	assert.Len(t, inserted, 5)
}

func TestReconcileIsIdempotent(t *testing.T) {
	project := newMemoryProject()

	first, err := Reconcile(project, Required)
	require.NoError(t, err)
	require.Len(t, first, 5)

	second, err := Reconcile(project, Required)
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Len(t, project.added, 5)
}

func TestReconcileFrameworksBeforeLibraries(t *testing.T) {
	project := newMemoryProject()
	deps := []Dependency{
		{Name: "libz", Kind: Library},
		{Name: "Foundation", Kind: Framework},
		{Name: "libc++", Kind: Library},
		{Name: "UIKit", Kind: Framework},
	}

	inserted, err := Reconcile(project, deps)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"System/Library/Frameworks/Foundation.framework",
		"System/Library/Frameworks/UIKit.framework",
		"usr/lib/libz.dylib",
		"usr/lib/libc++.dylib",
	}, insertedPaths(inserted))
}

func TestReconcileStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	project := newMemoryProject()
	project.failOn = "System/Library/Frameworks/Social.framework"
	project.failErr = boom

	inserted, err := Reconcile(project, Required)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "add framework System/Library/Frameworks/Social.framework")
	assert.Equal(t, allPaths[:2], insertedPaths(inserted))
}

func TestReconcileProjectFixture(t *testing.T) {
	project := pbxproj.NewPbxProject("../../pbxproj/testdata/project.pbxproj")
	require.NoError(t, project.Parse())

	inserted, err := Reconcile(&project, Required)
	require.NoError(t, err)
	assert.Equal(t, allPaths, insertedPaths(inserted))
	assert.True(t, project.Modified())
	for _, path := range allPaths {
		assert.Len(t, project.FileReferences(path, SdkRoot), 1, path)
	}

	again, err := Reconcile(&project, Required)
	require.NoError(t, err)
	assert.Empty(t, again)
}
