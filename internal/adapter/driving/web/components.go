package web

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	vm "github.com/ericfisherdev/recipebook/internal/adapter/driving/web/viewmodel"
)

// htmlWriter writes markup and keeps the first write error so components can
// emit a page without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}

func (hw *htmlWriter) component(ctx context.Context, c templ.Component) {
	if hw.err != nil || c == nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

// Layout wraps body in the HTML document shell.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		hw.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		hw.raw(`<title>`)
		hw.text(title)
		hw.raw(`</title><link rel="stylesheet" href="/static/style.css"></head><body>`)
		hw.raw(`<header class="topbar"><a href="/" class="brand">Recipebook</a></header><main>`)
		hw.component(ctx, body)
		hw.raw(`</main></body></html>`)
		return hw.err
	})
}

// ListPage renders the recipe list with search, create and delete controls.
func ListPage(page vm.ListPageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		hw.raw(`<section class="toolbar">`)
		hw.raw(`<form method="get" action="/" class="search"><input type="search" name="q" placeholder="Search by name" value="`)
		hw.text(page.Search)
		hw.raw(`"><button type="submit">Search</button></form>`)
		hw.raw(`<form method="post" action="/refresh">`)
		csrfField(hw, page.CSRFToken)
		hw.raw(`<button type="submit">Refresh</button></form></section>`)

		failureBanner(hw, page.Failure)

		if page.Searching {
			hw.raw(`<h2>Results for &ldquo;`)
			hw.text(page.Search)
			hw.raw(`&rdquo;</h2>`)
		} else {
			hw.raw(`<h2>Recipes</h2>`)
		}

		if len(page.Recipes) == 0 {
			hw.raw(`<p class="empty">No recipes.</p>`)
		} else {
			hw.raw(`<ul class="recipes">`)
			for _, r := range page.Recipes {
				recipeRow(hw, r, page.CSRFToken)
			}
			hw.raw(`</ul>`)
		}

		hw.raw(`<h2>New recipe</h2><form method="post" action="/recipes" class="recipe-form">`)
		csrfField(hw, page.CSRFToken)
		recipeFields(hw, vm.RecipeDetailViewModel{})
		hw.raw(`<button type="submit">Add recipe</button></form>`)

		messagePanel(hw, page.Messages, page.CSRFToken)
		return hw.err
	})
}

// DetailPage renders one recipe with its edit form.
func DetailPage(page vm.DetailPageViewModel) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}

		failureBanner(hw, page.Failure)

		if r := page.Recipe; r != nil {
			hw.raw(`<article class="recipe"><h2>`)
			hw.text(r.Name)
			hw.raw(`</h2><div class="description">`)
			hw.component(ctx, templ.Raw(r.DescriptionHTML))
			hw.raw(`</div><h3>Ingredients</h3><ul class="ingredients">`)
			for _, ing := range r.Ingredients {
				hw.raw(`<li>`)
				hw.text(ing)
				hw.raw(`</li>`)
			}
			hw.raw(`</ul><h3>Instructions</h3><div class="instructions">`)
			hw.component(ctx, templ.Raw(r.InstructionsHTML))
			hw.raw(`</div>`)

			if len(r.Attributes) > 0 {
				hw.raw(`<dl class="attributes">`)
				for _, a := range r.Attributes {
					hw.raw(`<dt>`)
					hw.text(a.Key)
					hw.raw(`</dt><dd><code>`)
					hw.text(a.Value)
					hw.raw(`</code></dd>`)
				}
				hw.raw(`</dl>`)
			}
			hw.raw(`</article>`)

			hw.raw(`<h3>Edit</h3><form method="post" class="recipe-form" action="`)
			hw.text(r.UpdatePath)
			hw.raw(`">`)
			csrfField(hw, page.CSRFToken)
			recipeFields(hw, *r)
			hw.raw(`<button type="submit">Save</button></form>`)

			hw.raw(`<form method="post" action="`)
			hw.text(r.DeletePath)
			hw.raw(`">`)
			csrfField(hw, page.CSRFToken)
			hw.raw(`<button type="submit" class="danger">Delete</button></form>`)
		} else {
			hw.raw(`<p class="empty">Recipe unavailable.</p>`)
		}

		hw.raw(`<p><a href="/">&larr; Back to list</a></p>`)
		messagePanel(hw, page.Messages, page.CSRFToken)
		return hw.err
	})
}

func recipeRow(hw *htmlWriter, r vm.RecipeCardViewModel, token string) {
	hw.raw(`<li class="recipe-row"><a href="`)
	hw.text(r.DetailPath)
	hw.raw(`">`)
	hw.text(r.Name)
	hw.raw(`</a>`)
	hw.raw(fmt.Sprintf(`<span class="count">%d ingredients</span>`, r.IngredientCount))
	if r.Summary != "" {
		hw.raw(`<p class="summary">`)
		hw.text(r.Summary)
		hw.raw(`</p>`)
	}
	hw.raw(`<form method="post" action="`)
	hw.text(r.DeletePath)
	hw.raw(`">`)
	csrfField(hw, token)
	hw.raw(`<button type="submit" class="danger">Delete</button></form></li>`)
}

func recipeFields(hw *htmlWriter, r vm.RecipeDetailViewModel) {
	hw.raw(`<label>Name <input type="text" name="name" required value="`)
	hw.text(r.Name)
	hw.raw(`"></label>`)
	hw.raw(`<label>Description <textarea name="description" rows="3">`)
	hw.text(r.Description)
	hw.raw(`</textarea></label>`)
	hw.raw(`<label>Ingredients, one per line <textarea name="ingredients" rows="6">`)
	hw.text(r.IngredientsText)
	hw.raw(`</textarea></label>`)
	hw.raw(`<label>Instructions <textarea name="instructions" rows="8">`)
	hw.text(r.Instructions)
	hw.raw(`</textarea></label>`)
}

func failureBanner(hw *htmlWriter, f *vm.FailureViewModel) {
	if f == nil {
		return
	}
	hw.raw(`<div class="failure" role="alert"><strong>`)
	hw.text(f.Operation)
	hw.raw(`</strong> failed (`)
	hw.text(f.Kind)
	hw.raw(`): `)
	hw.text(f.Message)
	hw.raw(`</div>`)
}

func messagePanel(hw *htmlWriter, msgs []vm.MessageViewModel, token string) {
	hw.raw(`<aside class="messages"><h3>Messages</h3>`)
	if len(msgs) == 0 {
		hw.raw(`<p class="empty">No messages.</p>`)
	} else {
		hw.raw(`<ol>`)
		for _, m := range msgs {
			hw.raw(`<li><time>`)
			hw.text(m.Time)
			hw.raw(`</time> `)
			hw.text(m.Text)
			hw.raw(`</li>`)
		}
		hw.raw(`</ol>`)
	}
	hw.raw(`<form method="post" action="/messages/clear">`)
	csrfField(hw, token)
	hw.raw(`<button type="submit">Clear</button></form></aside>`)
}

func csrfField(hw *htmlWriter, token string) {
	hw.raw(`<input type="hidden" name="` + csrfFormField + `" value="`)
	hw.text(token)
	hw.raw(`">`)
}
