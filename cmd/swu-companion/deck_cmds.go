package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ramonehamilton/SWU-Companion/internal/swu/cards"
	"github.com/ramonehamilton/SWU-Companion/internal/swu/decks"
)

func newDeckCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Manage decks and deck folders",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List folders and their decks",
			Args:  cobra.NoArgs,
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				listing, err := repo.ListDecks()
				if err != nil {
					return err
				}
				displayDeckTree(cmd.OutOrStdout(), listing)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "folder <name>",
			Short: "Create a deck folder",
			Args:  cobra.ExactArgs(1),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if err := repo.CreateFolder(args[0]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Created folder %s\n", args[0])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "folder-rename <old> <new>",
			Short: "Rename a deck folder",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if err := repo.RenameFolder(args[0], args[1]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Renamed folder %s to %s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "new <folder> <name>",
			Short: "Create an empty deck",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if _, err := repo.CreateDeck(args[0], args[1]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Created deck %s/%s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rename <folder> <old> <new>",
			Short: "Rename a deck",
			Args:  cobra.ExactArgs(3),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if err := repo.RenameDeck(args[0], args[1], args[2]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Renamed deck %s to %s\n", args[1], args[2])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "mv <folder> <name> <dest_folder>",
			Short: "Move a deck to another folder",
			Args:  cobra.ExactArgs(3),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if err := repo.MoveDeck(args[0], args[1], args[2]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Moved %s to %s\n", args[1], args[2])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "rm <folder> <name>",
			Short: "Delete a deck",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				if err := repo.DeleteDeck(args[0], args[1]); err != nil {
					return err
				}
				successColor.Fprintf(cmd.OutOrStdout(), "Deleted deck %s/%s\n", args[0], args[1])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "show <folder> <name>",
			Short: "Show a deck with its breakdown and warnings",
			Args:  cobra.ExactArgs(2),
			RunE: a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
				deck, err := repo.LoadDeck(args[0], args[1])
				if err != nil {
					return err
				}
				store, catalog, collection, err := a.loadCatalog(cmd)
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()

				displayDeck(cmd.OutOrStdout(), deck, catalog, collection)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <folder> <name> <identity_key> <count>",
			Short: "Set the copies of a card in a deck (0 removes it)",
			Args:  cobra.ExactArgs(4),
			RunE: a.editDeck(func(cmd *cobra.Command, deck *decks.Deck, args []string) error {
				count, err := strconv.Atoi(args[3])
				if err != nil {
					return fmt.Errorf("%w: %q is not a number", cards.ErrInvalidQuantity, args[3])
				}
				return deck.SetCount(args[2], count)
			}),
		},
		&cobra.Command{
			Use:   "add <folder> <name> <identity_key>",
			Short: "Add one copy of a card to a deck",
			Args:  cobra.ExactArgs(3),
			RunE: a.editDeck(func(cmd *cobra.Command, deck *decks.Deck, args []string) error {
				deck.AddCard(args[2])
				return nil
			}),
		},
		&cobra.Command{
			Use:   "status <folder> <name> <Idea|Testing|Built>",
			Short: "Set the build stage of a deck",
			Args:  cobra.ExactArgs(3),
			RunE: a.editDeck(func(cmd *cobra.Command, deck *decks.Deck, args []string) error {
				status, err := decks.ParseStatus(args[2])
				if err != nil {
					return err
				}
				deck.Status = status
				return nil
			}),
		},
		&cobra.Command{
			Use:   "leader <folder> <name> [identity_key]",
			Short: "Set or clear the deck leader",
			Args:  cobra.RangeArgs(2, 3),
			RunE: a.editDeck(func(cmd *cobra.Command, deck *decks.Deck, args []string) error {
				deck.SetLeader(optionalArg(args, 2))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "base <folder> <name> [identity_key]",
			Short: "Set or clear the deck base",
			Args:  cobra.RangeArgs(2, 3),
			RunE: a.editDeck(func(cmd *cobra.Command, deck *decks.Deck, args []string) error {
				deck.SetBase(optionalArg(args, 2))
				return nil
			}),
		},
	)

	return cmd
}

type deckRunFunc func(cmd *cobra.Command, repo *decks.Repository, args []string) error

func (a *app) withDecks(fn deckRunFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		repo, err := a.decks()
		if err != nil {
			return err
		}
		return fn(cmd, repo, args)
	}
}

// editDeck loads args[0]/args[1], applies fn and saves the result.
func (a *app) editDeck(fn func(cmd *cobra.Command, deck *decks.Deck, args []string) error) func(*cobra.Command, []string) error {
	return a.withDecks(func(cmd *cobra.Command, repo *decks.Repository, args []string) error {
		deck, err := repo.LoadDeck(args[0], args[1])
		if err != nil {
			return err
		}
		if err := fn(cmd, deck, args); err != nil {
			return err
		}
		if err := repo.SaveDeck(args[0], deck); err != nil {
			return err
		}
		successColor.Fprintf(cmd.OutOrStdout(), "Saved %s/%s (%d cards)\n", args[0], deck.Name, deck.Total())
		return nil
	})
}

func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}
