// Package graphql exposes the catalog as a read-only GraphQL schema.
package graphql

import (
	"errors"

	"github.com/graphql-go/graphql"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/app/repositories"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/pkg/apperr"
	gql "github.com/shashiranjanraj/storefront/pkg/graphql"
)

var categoryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Category",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"image":       &graphql.Field{Type: graphql.String},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"name":        &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"description": &graphql.Field{Type: graphql.String},
		"price": &graphql.Field{
			Type: graphql.NewNonNull(graphql.String),
			Resolve: func(p graphql.ResolveParams) (any, error) {
				return p.Source.(models.Product).Price.StringFixed(2), nil
			},
		},
		"stock":    &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"featured": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
		"images":   &graphql.Field{Type: graphql.NewList(graphql.String)},
		"category": &graphql.Field{
			Type: categoryType,
			Resolve: func(p graphql.ResolveParams) (any, error) {
				if c := p.Source.(models.Product).Category; c != nil {
					return *c, nil
				}
				return nil, nil
			},
		},
	},
})

// Schema builds the catalog schema on top of the catalog service.
func Schema(catalog *services.CatalogService) (graphql.Schema, error) {
	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"categories": &graphql.Field{
				Type: graphql.NewList(categoryType),
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return public(catalog.Categories(p.Context))
				},
			},
			"category": &graphql.Field{
				Type: categoryType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return public(catalog.Category(p.Context, uintArg(p.Args, "id")))
				},
			},
			"products": &graphql.Field{
				Type: graphql.NewList(productType),
				Args: graphql.FieldConfigArgument{
					"search":   &graphql.ArgumentConfig{Type: graphql.String},
					"category": &graphql.ArgumentConfig{Type: graphql.Int},
					"featured": &graphql.ArgumentConfig{Type: graphql.Boolean},
					"page":     &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 1},
					"limit":    &graphql.ArgumentConfig{Type: graphql.Int},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					search, _ := p.Args["search"].(string)
					featured, _ := p.Args["featured"].(bool)
					page, _ := p.Args["page"].(int)
					limit, _ := p.Args["limit"].(int)
					products, _, err := catalog.Products(p.Context, repositories.ProductFilter{
						Search:     search,
						CategoryID: uintArg(p.Args, "category"),
						Featured:   featured,
						Page:       page,
						Limit:      limit,
					})
					return public(products, err)
				},
			},
			"product": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
				},
				Resolve: func(p graphql.ResolveParams) (any, error) {
					return public(catalog.Product(p.Context, uintArg(p.Args, "id")))
				},
			},
		},
	})
	return gql.NewSchema(query)
}

// public hides error causes from clients, as the REST envelope does.
func public(v any, err error) (any, error) {
	if err != nil {
		return nil, errors.New(apperr.PublicMessage(err))
	}
	return v, nil
}

func uintArg(args map[string]any, name string) uint {
	if n, ok := args[name].(int); ok && n > 0 {
		return uint(n)
	}
	return 0
}
