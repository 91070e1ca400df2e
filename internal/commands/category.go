package commands

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"spendlog/internal/core"
)

type categoriesCmd struct {
	env *Env
}

func (*categoriesCmd) Name() string     { return "categories" }
func (*categoriesCmd) Synopsis() string { return "list categories" }
func (*categoriesCmd) Usage() string {
	return `spendlog categories

  Lists the categories known to the record store.
`
}

func (*categoriesCmd) SetFlags(*flag.FlagSet) {}

func (c *categoriesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if err := c.env.Session.Initialize(ctx); err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.Categories(c.env.Session.State().Categories))
}

type addCategoryCmd struct {
	env   *Env
	name  string
	color string
	icon  string
}

func (*addCategoryCmd) Name() string     { return "add-category" }
func (*addCategoryCmd) Synopsis() string { return "create a category" }
func (*addCategoryCmd) Usage() string {
	return `spendlog add-category -name <name> [-color #RRGGBB] [-icon <icon>]

  Creates a category. Names are unique.
`
}

func (c *addCategoryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.name, "name", "", "Category name.")
	f.StringVar(&c.color, "color", "", "Display color as #RRGGBB.")
	f.StringVar(&c.icon, "icon", "", "Display icon, usually an emoji.")
}

func (c *addCategoryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	nc := core.NewCategory{Name: c.name, Color: c.color, Icon: c.icon}
	if err := nc.Validate(); err != nil {
		return c.env.usage("%v", err)
	}
	created, err := c.env.Session.AddCategory(ctx, nc)
	if err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.Categories([]core.Category{created}))
}
