package decks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ramonehamilton/SWU-Companion/internal/storage"
)

var (
	// ErrAlreadyExists is returned when a destination folder or deck is taken.
	ErrAlreadyExists = errors.New("already exists")

	// ErrNotFound is returned when a source folder or deck is missing.
	ErrNotFound = errors.New("not found")

	// ErrInvalidName is returned for folder or deck names that cannot be
	// used as file names.
	ErrInvalidName = errors.New("invalid name")
)

// ForbiddenChars may not appear in folder or deck names.
const ForbiddenChars = `<>:"/\|?*`

const deckExt = ".json"

// ValidateName checks a folder or deck name.
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is empty", ErrInvalidName)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q starts with a dot", ErrInvalidName, name)
	}
	if strings.ContainsAny(name, ForbiddenChars) {
		return fmt.Errorf("%w: %q contains one of %s", ErrInvalidName, name, ForbiddenChars)
	}
	return nil
}

// Repository manages deck files under {root}/{folder}/{name}.json.
// Every name is validated before the filesystem is touched, and a failed
// operation leaves no partial change behind.
type Repository struct {
	root   string
	logger *slog.Logger
}

// NewRepository creates a repository rooted at root, creating the
// directory if needed.
func NewRepository(root string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create deck directory: %w", err)
	}
	return &Repository{root: root, logger: logger}, nil
}

// Root returns the deck directory.
func (r *Repository) Root() string {
	return r.root
}

func (r *Repository) folderPath(folder string) string {
	return filepath.Join(r.root, folder)
}

func (r *Repository) deckPath(folder, name string) string {
	return filepath.Join(r.root, folder, name+deckExt)
}

// ListDecks maps each folder to its sorted deck names. Empty folders are
// included with no decks.
func (r *Repository) ListDecks() (map[string][]string, error) {
	result := make(map[string][]string)

	folders, err := os.ReadDir(r.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read deck directory: %w", err)
	}

	for _, folder := range folders {
		if !folder.IsDir() {
			continue
		}

		entries, err := os.ReadDir(r.folderPath(folder.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read folder %s: %w", folder.Name(), err)
		}

		names := []string{}
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, deckExt) {
				continue
			}
			names = append(names, strings.TrimSuffix(name, deckExt))
		}
		sort.Strings(names)
		result[folder.Name()] = names
	}

	return result, nil
}

// Folders returns the folder names sorted.
func (r *Repository) Folders() ([]string, error) {
	decks, err := r.ListDecks()
	if err != nil {
		return nil, err
	}
	folders := make([]string, 0, len(decks))
	for f := range decks {
		folders = append(folders, f)
	}
	sort.Strings(folders)
	return folders, nil
}

// CreateFolder creates an empty folder.
func (r *Repository) CreateFolder(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	path := r.folderPath(name)
	if exists(path) {
		return fmt.Errorf("folder %s: %w", name, ErrAlreadyExists)
	}
	if err := os.Mkdir(path, 0o755); err != nil {
		return fmt.Errorf("failed to create folder %s: %w", name, err)
	}
	r.logger.Info("Created deck folder", "folder", name)
	return nil
}

// RenameFolder renames a folder and everything in it.
func (r *Repository) RenameFolder(oldName, newName string) error {
	if err := validateAll(oldName, newName); err != nil {
		return err
	}
	if !isDir(r.folderPath(oldName)) {
		return fmt.Errorf("folder %s: %w", oldName, ErrNotFound)
	}
	if oldName == newName {
		return nil
	}
	if exists(r.folderPath(newName)) {
		return fmt.Errorf("folder %s: %w", newName, ErrAlreadyExists)
	}
	if err := os.Rename(r.folderPath(oldName), r.folderPath(newName)); err != nil {
		return fmt.Errorf("failed to rename folder: %w", err)
	}
	r.logger.Info("Renamed deck folder", "from", oldName, "to", newName)
	return nil
}

// CreateDeck writes a new empty deck into an existing folder.
func (r *Repository) CreateDeck(folder, name string) (*Deck, error) {
	if err := validateAll(folder, name); err != nil {
		return nil, err
	}
	if !isDir(r.folderPath(folder)) {
		return nil, fmt.Errorf("folder %s: %w", folder, ErrNotFound)
	}
	path := r.deckPath(folder, name)
	if exists(path) {
		return nil, fmt.Errorf("deck %s/%s: %w", folder, name, ErrAlreadyExists)
	}

	deck := NewDeck(name)
	if err := writeDeck(path, deck); err != nil {
		return nil, err
	}
	r.logger.Info("Created deck", "folder", folder, "deck", name)
	return deck, nil
}

// RenameDeck renames a deck within its folder and updates its stored name.
func (r *Repository) RenameDeck(folder, oldName, newName string) error {
	if err := validateAll(folder, oldName, newName); err != nil {
		return err
	}

	oldPath := r.deckPath(folder, oldName)
	newPath := r.deckPath(folder, newName)

	deck, err := readDeck(oldPath)
	if err != nil {
		return fmt.Errorf("deck %s/%s: %w", folder, oldName, err)
	}
	if oldName == newName {
		return nil
	}
	if exists(newPath) {
		return fmt.Errorf("deck %s/%s: %w", folder, newName, ErrAlreadyExists)
	}

	deck.Name = newName
	if err := writeDeck(newPath, deck); err != nil {
		return err
	}
	if err := os.Remove(oldPath); err != nil {
		_ = os.Remove(newPath)
		return fmt.Errorf("failed to remove old deck file: %w", err)
	}

	r.logger.Info("Renamed deck", "folder", folder, "from", oldName, "to", newName)
	return nil
}

// MoveDeck moves a deck into another existing folder.
func (r *Repository) MoveDeck(folder, name, destFolder string) error {
	if err := validateAll(folder, name, destFolder); err != nil {
		return err
	}

	src := r.deckPath(folder, name)
	dst := r.deckPath(destFolder, name)

	if !exists(src) {
		return fmt.Errorf("deck %s/%s: %w", folder, name, ErrNotFound)
	}
	if folder == destFolder {
		return nil
	}
	if !isDir(r.folderPath(destFolder)) {
		return fmt.Errorf("folder %s: %w", destFolder, ErrNotFound)
	}
	if exists(dst) {
		return fmt.Errorf("deck %s/%s: %w", destFolder, name, ErrAlreadyExists)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("failed to move deck: %w", err)
	}
	r.logger.Info("Moved deck", "deck", name, "from", folder, "to", destFolder)
	return nil
}

// DeleteDeck removes a deck file.
func (r *Repository) DeleteDeck(folder, name string) error {
	if err := validateAll(folder, name); err != nil {
		return err
	}
	path := r.deckPath(folder, name)
	if !exists(path) {
		return fmt.Errorf("deck %s/%s: %w", folder, name, ErrNotFound)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete deck: %w", err)
	}
	r.logger.Info("Deleted deck", "folder", folder, "deck", name)
	return nil
}

// LoadDeck reads a deck.
func (r *Repository) LoadDeck(folder, name string) (*Deck, error) {
	if err := validateAll(folder, name); err != nil {
		return nil, err
	}
	deck, err := readDeck(r.deckPath(folder, name))
	if err != nil {
		return nil, fmt.Errorf("deck %s/%s: %w", folder, name, err)
	}
	return deck, nil
}

// SaveDeck writes deck to {folder}/{deck.Name}.json, replacing any
// existing file. The folder must exist.
func (r *Repository) SaveDeck(folder string, deck *Deck) error {
	if deck == nil {
		return fmt.Errorf("deck is nil")
	}
	if err := validateAll(folder, deck.Name); err != nil {
		return err
	}
	if !isDir(r.folderPath(folder)) {
		return fmt.Errorf("folder %s: %w", folder, ErrNotFound)
	}
	if _, err := ParseStatus(string(deck.Status)); err != nil {
		return err
	}
	return writeDeck(r.deckPath(folder, deck.Name), deck)
}

func readDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	var deck Deck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck: %w", err)
	}
	if deck.Status == "" {
		deck.Status = StatusIdea
	}
	if deck.Cards == nil {
		deck.Cards = make(map[string]int)
	}
	for key, n := range deck.Cards {
		if n <= 0 {
			delete(deck.Cards, key)
		}
	}
	return &deck, nil
}

func writeDeck(path string, deck *Deck) error {
	if deck.Cards == nil {
		deck.Cards = make(map[string]int)
	}
	for key, n := range deck.Cards {
		if n <= 0 {
			delete(deck.Cards, key)
		}
	}
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deck: %w", err)
	}
	if err := storage.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("failed to save deck: %w", err)
	}
	return nil
}

func validateAll(names ...string) error {
	for _, name := range names {
		if err := ValidateName(name); err != nil {
			return err
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
