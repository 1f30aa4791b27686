package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v3"

	"costbook/internal/costing"
	"costbook/internal/units"
)

func precisionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "precision",
			Value: 2,
			Usage: "Decimal places for displayed costs",
		},
		&cli.IntFlag{
			Name:  "unit-precision",
			Value: 4,
			Usage: "Decimal places for displayed unit costs",
		},
	}
}

func recipeIDArg(cmd *cli.Command) (uint, error) {
	value := cmd.Args().First()
	if value == "" {
		return 0, errors.New("recipe id is required")
	}
	id, err := strconv.ParseUint(value, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid recipe id %q", value)
	}
	return uint(id), nil
}

func costCmd() *cli.Command {
	return &cli.Command{
		Name:      "cost",
		Usage:     "Resolve the cost of one recipe",
		ArgsUsage: "<recipe-id>",
		Flags:     precisionFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			recipeID, err := recipeIDArg(cmd)
			if err != nil {
				return err
			}
			store, closeFn, err := loadStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			snapshot, err := store.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("load recipes: %w", err)
			}
			result, err := costing.NewResolver(snapshot).Resolve(ctx, recipeID)
			if err != nil {
				return err
			}
			recipe, _ := snapshot.Recipe(recipeID)
			return emit(ctx, cmd, newCostView(recipe.Title, result, int(cmd.Int("precision")), int(cmd.Int("unit-precision"))))
		},
	}
}

func costsCmd() *cli.Command {
	flags := append([]cli.Flag{
		&cli.IntFlag{
			Name:  "concurrency",
			Value: 4,
			Usage: "Recipes resolved in parallel",
		},
	}, precisionFlags()...)

	return &cli.Command{
		Name:  "costs",
		Usage: "Resolve the cost of every recipe",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			store, closeFn, err := loadStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			snapshot, err := store.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("load recipes: %w", err)
			}
			entries, err := costing.ResolveAll(ctx, snapshot, snapshot.RecipeIDs(), int(cmd.Int("concurrency")))
			if err != nil {
				return err
			}

			view := make(costsView, 0, len(entries))
			for _, entry := range entries {
				recipe, _ := snapshot.Recipe(entry.RecipeID)
				if entry.Err != nil {
					view = append(view, costView{RecipeID: entry.RecipeID, Title: recipe.Title, Error: entry.Err.Error()})
					continue
				}
				view = append(view, newCostView(recipe.Title, entry.Result, int(cmd.Int("precision")), int(cmd.Int("unit-precision"))))
			}
			return emit(ctx, cmd, view)
		},
	}
}

func usedInCmd() *cli.Command {
	return &cli.Command{
		Name:      "used-in",
		Usage:     "List the recipes that directly use an ingredient or recipe",
		ArgsUsage: "<item-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "type",
				Value: string(costing.KindIngredient),
				Usage: "Item type (ingredient or recipe)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			itemID, err := recipeIDArg(cmd)
			if err != nil {
				return err
			}
			kind, err := costing.ParseItemKind(cmd.String("type"))
			if err != nil {
				return err
			}
			store, closeFn, err := loadStore(ctx, cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			snapshot, err := store.Snapshot(ctx)
			if err != nil {
				return fmt.Errorf("load recipes: %w", err)
			}
			return emit(ctx, cmd, usedInView{
				ItemID: itemID,
				Type:   kind,
				UsedIn: costing.UsedIn(snapshot, itemID, kind),
			})
		},
	}
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a quantity between units",
		ArgsUsage: "<value> <from> <to>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 3 {
				return errors.New("convert expects <value> <from> <to>")
			}
			value, err := strconv.ParseFloat(cmd.Args().Get(0), 64)
			if err != nil {
				return fmt.Errorf("invalid value %q", cmd.Args().Get(0))
			}
			from := lookupUnit(cmd.Args().Get(1))
			to := lookupUnit(cmd.Args().Get(2))

			view := convertView{From: from, To: to}
			if converted, ok := units.Convert(value, from, to); ok {
				view.Value = &converted
				view.Compatible = true
			}
			return emit(ctx, cmd, view)
		},
	}
}

func unitsCmd() *cli.Command {
	return &cli.Command{
		Name:  "units",
		Usage: "List units per category",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "enabled",
				Usage: "Comma separated units to list (default: all)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			prefs := units.ParsePreferences(cmd.String("enabled"))
			view := make(unitsView, 0, len(units.Categories()))
			for _, category := range units.Categories() {
				view = append(view, unitCategoryView{
					Category: category.String(),
					Anchor:   category.Anchor(),
					Units:    prefs.Units(category),
				})
			}
			return emit(ctx, cmd, view)
		},
	}
}

func lookupUnit(value string) units.Unit {
	if unit, ok := units.Parse(value); ok {
		return unit
	}
	return units.Unit(value)
}
