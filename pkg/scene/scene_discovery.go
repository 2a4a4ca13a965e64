package scene

import (
	"cmp"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
)

const (
	builtinGroup = "Built-in Scenes"
	fileGroup    = "Scene Files"

	// FilePrefix marks scene ids that refer to a scene description file
	FilePrefix = "file:"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to scene file (file type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// ScenesDir returns the first scene directory that exists, or "" if none do
func ScenesDir() string {
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListFileScenes scans dir for .json scene descriptions, sorted by name.
// Files whose header cannot be parsed are reported and skipped.
func ListFileScenes(dir string) ([]SceneInfo, error) {
	if dir == "" {
		return []SceneInfo{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := ParseSceneMetadata(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Printf("Warning: skipping %s: %v\n", entry.Name(), err)
			continue
		}
		scenes = append(scenes, info)
	}

	slices.SortFunc(scenes, func(a, b SceneInfo) int {
		return strings.Compare(a.Name, b.Name)
	})
	return scenes, nil
}

// ParseSceneMetadata reads the name, description and group fields of a scene
// file. Missing fields fall back to values derived from the file name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	stem := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	info := SceneInfo{
		ID:       FilePrefix + stem,
		Name:     titleCase(stem),
		Group:    fileGroup,
		Type:     "file",
		FilePath: filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return info, nil
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return info, fmt.Errorf("invalid scene file: %w", err)
	}

	info.Name = cmp.Or(header.Name, info.Name)
	info.Group = cmp.Or(header.Group, info.Group)
	info.Description = header.Description
	return info, nil
}

// ListAllScenes returns the built-in scenes followed by the scene files,
// grouped by category
func ListAllScenes() (ScenesResponse, error) {
	infos := make([]SceneInfo, 0, len(builtins))
	for _, b := range builtins {
		info := b.info
		info.Group = builtinGroup
		info.Type = "builtin"
		infos = append(infos, info)
	}

	files, err := ListFileScenes(ScenesDir())
	if err != nil {
		return ScenesResponse{}, fmt.Errorf("failed to list scene files: %w", err)
	}

	return ScenesResponse{Groups: groupScenes(append(infos, files...))}, nil
}

// groupScenes buckets scenes by group, keeping their order within a group.
// The built-in group comes first and the rest are sorted by name.
func groupScenes(infos []SceneInfo) []SceneGroup {
	byGroup := make(map[string][]SceneInfo)
	for _, info := range infos {
		byGroup[info.Group] = append(byGroup[info.Group], info)
	}

	names := slices.SortedFunc(maps.Keys(byGroup), func(a, b string) int {
		switch {
		case a == builtinGroup:
			return -1
		case b == builtinGroup:
			return 1
		}
		return strings.Compare(a, b)
	})

	groups := make([]SceneGroup, 0, len(names))
	for _, name := range names {
		groups = append(groups, SceneGroup{Name: name, Scenes: byGroup[name]})
	}
	return groups
}

// titleCase turns a file stem like "three-spheres" into "Three Spheres"
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
	}
	return strings.Join(words, " ")
}
