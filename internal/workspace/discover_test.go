package workspace

import (
	"slices"
	"testing"
	"testing/fstest"
)

func TestDiscover(t *testing.T) {
	fsys := fstest.MapFS{
		"Mods/Core.SC2Mod/Base.SC2Data/UI/Layout/Templates.SC2Layout": {Data: []byte("<Desc/>")},
		"Mods/Core.SC2Mod/Base.SC2Data/UI/Layout/GameUI.SC2Layout":    {Data: []byte("<Desc/>")},
		"Mods/Core.SC2Mod/Base.SC2Data/UI/Layout/readme.txt":          {Data: []byte("notes")},
		"Maps/Arena.sc2map/Base.SC2Data/UI/Layout/Arena.sc2layout":    {Data: []byte("<Desc/>")},
		"Loose/Extra.SC2Layout":                                       {Data: []byte("<Desc/>")},
	}
	archives, err := Discover(fsys, ".", Config{})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	var paths []string
	for _, a := range archives {
		paths = append(paths, a.Path)
	}
	want := []string{".", "Maps/Arena.sc2map", "Mods/Core.SC2Mod"}
	if !slices.Equal(paths, want) {
		t.Fatalf("archives = %v, want %v", paths, want)
	}
	core := archives[2].Layouts
	wantCore := []string{
		"Mods/Core.SC2Mod/Base.SC2Data/UI/Layout/GameUI.SC2Layout",
		"Mods/Core.SC2Mod/Base.SC2Data/UI/Layout/Templates.SC2Layout",
	}
	if !slices.Equal(core, wantCore) {
		t.Fatalf("Core layouts = %v, want %v", core, wantCore)
	}
	if got := archives[0].Layouts; !slices.Equal(got, []string{"Loose/Extra.SC2Layout"}) {
		t.Fatalf("root layouts = %v", got)
	}
}

func TestDiscoverRootWithoutArchives(t *testing.T) {
	fsys := fstest.MapFS{
		"ui/B.SC2Layout": {Data: []byte("<Desc/>")},
		"ui/A.SC2Layout": {Data: []byte("<Desc/>")},
	}
	archives, err := Discover(fsys, "ui", Config{})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(archives) != 1 || archives[0].Path != "ui" {
		t.Fatalf("archives = %+v", archives)
	}
	if want := []string{"ui/A.SC2Layout", "ui/B.SC2Layout"}; !slices.Equal(archives[0].Layouts, want) {
		t.Fatalf("layouts = %v, want %v", archives[0].Layouts, want)
	}
}

func TestDiscoverEmptyArchivesDropRoot(t *testing.T) {
	fsys := fstest.MapFS{
		"A.SC2Mod/x.SC2Layout": {Data: []byte("<Desc/>")},
	}
	archives, err := Discover(fsys, ".", Config{})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(archives) != 1 || archives[0].Path != "A.SC2Mod" {
		t.Fatalf("archives = %+v", archives)
	}
}

func TestDiscoverCustomConfig(t *testing.T) {
	fsys := fstest.MapFS{
		"pack.ui/main.layout":    {Data: []byte("<Desc/>")},
		"pack.ui/main.SC2Layout": {Data: []byte("<Desc/>")},
	}
	archives, err := Discover(fsys, ".", Config{Extension: ".layout", ArchiveSuffixes: []string{".ui"}})
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(archives) != 1 || !slices.Equal(archives[0].Layouts, []string{"pack.ui/main.layout"}) {
		t.Fatalf("archives = %+v", archives)
	}
}

func TestDiscoverErrors(t *testing.T) {
	if _, err := Discover(nil, ".", Config{}); err == nil {
		t.Fatalf("Discover(nil) error = nil")
	}
	if _, err := Discover(fstest.MapFS{}, "missing", Config{}); err == nil {
		t.Fatalf("Discover(missing) error = nil")
	}
}
