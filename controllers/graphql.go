// GraphQL schema and handler. The catalog is exposed through a single POST
// surface; admin-only fields are wrapped by one adminOnly interceptor so the
// authorization rule lives in exactly one place.
package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/graphql-go/graphql"

	"github.com/himique/Industial-Automation/auth"
	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/models"
	"github.com/himique/Industial-Automation/store"
)

type requestKey struct{}

func requestFrom(ctx context.Context) *http.Request {
	r, _ := ctx.Value(requestKey{}).(*http.Request)
	return r
}

// adminOnly wraps a resolver with the admin gate. Failures collapse to the
// generic forbidden message regardless of which check failed.
func adminOnly(resolve graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (interface{}, error) {
		r := requestFrom(p.Context)
		if r == nil {
			return nil, auth.ErrForbidden
		}
		if _, err := auth.RequireAdmin(p.Context, config.DB, r, config.C.SecretKey); err != nil {
			return nil, auth.ErrForbidden
		}
		return resolve(p)
	}
}

var componentType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Component",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return int(p.Source.(models.Component).ID), nil
		}},
		"productId": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return int(p.Source.(models.Component).ProductID), nil
		}},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Component).Name, nil
		}},
		"meshId": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Component).MeshID, nil
		}},
	},
})

var productType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Product",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return int(p.Source.(models.Product).ID), nil
		}},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Product).Name, nil
		}},
		"description": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Product).Description, nil
		}},
		"modelPath": &graphql.Field{Type: graphql.String, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.Product).ModelPath, nil
		}},
	},
})

var assemblyStepType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AssemblyStep",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return int(p.Source.(models.AssemblyStep).ID), nil
		}},
		"stepNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.AssemblyStep).StepNumber, nil
		}},
		"actionType": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.AssemblyStep).ActionType, nil
		}},
		"component": &graphql.Field{Type: componentType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(models.AssemblyStep).Component, nil
		}},
	},
})

var assemblyPlanType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AssemblyPlan",
	Fields: graphql.Fields{
		"id": &graphql.Field{Type: graphql.NewNonNull(graphql.Int), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return int(p.Source.(*models.AssemblyPlan).ID), nil
		}},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.AssemblyPlan).Name, nil
		}},
		"product": &graphql.Field{Type: productType, Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.AssemblyPlan).Product, nil
		}},
		"steps": &graphql.Field{Type: graphql.NewList(assemblyStepType), Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return p.Source.(*models.AssemblyPlan).Steps, nil
		}},
	},
})

var componentInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ComponentInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"productId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"name":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"meshId":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var assemblyStepInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AssemblyStepInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"componentId": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"stepNumber":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.Int)},
		"actionType":  &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

func resolveAssemblyPlan(p graphql.ResolveParams) (interface{}, error) {
	productID := uint(p.Args["productId"].(int))
	plan, err := store.GetAssemblyPlan(p.Context, config.DB, productID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}
	return plan, nil
}

func resolveAssemblyPlanByWorkstationName(p graphql.ResolveParams) (interface{}, error) {
	name := p.Args["name"].(string)
	productID, err := store.GetProductIDByWorkstationName(p.Context, config.DB, name)
	if err != nil {
		return nil, err
	}
	if productID == 0 {
		return nil, nil
	}
	plan, err := store.GetAssemblyPlan(p.Context, config.DB, productID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, nil
	}
	return plan, nil
}

func resolveAllProducts(p graphql.ResolveParams) (interface{}, error) {
	products, err := store.ListProducts(p.Context, config.DB)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func resolveProductByID(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(p.Args["productId"])
	if err != nil {
		return nil, err
	}
	product, err := store.GetProduct(p.Context, config.DB, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}
	return *product, nil
}

func resolveCreateProduct(p graphql.ResolveParams) (interface{}, error) {
	name := p.Args["name"].(string)
	description, _ := p.Args["description"].(string)
	product, err := store.CreateProduct(p.Context, config.DB, name, description)
	if err != nil {
		return nil, err
	}
	return *product, nil
}

func resolveAddComponent(p graphql.ResolveParams) (interface{}, error) {
	input := p.Args["component"].(map[string]interface{})
	component, err := store.AddComponent(
		p.Context,
		config.DB,
		uint(input["productId"].(int)),
		input["name"].(string),
		input["meshId"].(string),
	)
	if err != nil {
		return nil, err
	}
	return *component, nil
}

func resolveCreateAssemblyPlan(p graphql.ResolveParams) (interface{}, error) {
	productID := uint(p.Args["productId"].(int))
	name := p.Args["name"].(string)

	rawSteps := p.Args["steps"].([]interface{})
	steps := make([]store.StepInput, 0, len(rawSteps))
	for _, raw := range rawSteps {
		m := raw.(map[string]interface{})
		steps = append(steps, store.StepInput{
			ComponentID: uint(m["componentId"].(int)),
			StepNumber:  m["stepNumber"].(int),
			ActionType:  m["actionType"].(string),
		})
	}

	if _, err := store.ReplaceAssemblyPlan(p.Context, config.DB, productID, name, steps); err != nil {
		return nil, err
	}
	BroadcastCatalogEvent(CatalogEvent{Type: "plan_updated", ProductID: productID})

	// Reload through the read path so the response carries the full graph.
	plan, err := store.GetAssemblyPlan(p.Context, config.DB, productID)
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func resolveDeleteProduct(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(p.Args["productId"])
	if err != nil {
		return nil, err
	}
	if err := store.DeleteProduct(p.Context, config.DB, id); err != nil {
		return false, err
	}
	return true, nil
}

func resolveDeleteComponent(p graphql.ResolveParams) (interface{}, error) {
	id, err := parseID(p.Args["componentId"])
	if err != nil {
		return nil, err
	}
	if err := store.DeleteComponent(p.Context, config.DB, id); err != nil {
		return false, err
	}
	return true, nil
}

func parseID(arg interface{}) (uint, error) {
	switch v := arg.(type) {
	case int:
		return uint(v), nil
	case string:
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid id %q", v)
		}
		return uint(n), nil
	default:
		return 0, fmt.Errorf("invalid id")
	}
}

var schema = buildSchema()

func buildSchema() graphql.Schema {
	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"assemblyPlan": &graphql.Field{
				Type:    assemblyPlanType,
				Args:    graphql.FieldConfigArgument{"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)}},
				Resolve: resolveAssemblyPlan,
			},
			"assemblyPlanByWorkstationName": &graphql.Field{
				Type:    assemblyPlanType,
				Args:    graphql.FieldConfigArgument{"name": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)}},
				Resolve: resolveAssemblyPlanByWorkstationName,
			},
			"allProducts": &graphql.Field{
				Type:    graphql.NewList(productType),
				Resolve: adminOnly(resolveAllProducts),
			},
			"productById": &graphql.Field{
				Type:    productType,
				Args:    graphql.FieldConfigArgument{"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: adminOnly(resolveProductByID),
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createProduct": &graphql.Field{
				Type: productType,
				Args: graphql.FieldConfigArgument{
					"name":        &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"description": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: adminOnly(resolveCreateProduct),
			},
			"addComponent": &graphql.Field{
				Type: componentType,
				Args: graphql.FieldConfigArgument{
					"component": &graphql.ArgumentConfig{Type: graphql.NewNonNull(componentInput)},
				},
				Resolve: adminOnly(resolveAddComponent),
			},
			"createAssemblyPlan": &graphql.Field{
				Type: assemblyPlanType,
				Args: graphql.FieldConfigArgument{
					"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
					"name":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"steps":     &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(assemblyStepInput)))},
				},
				Resolve: adminOnly(resolveCreateAssemblyPlan),
			},
			"deleteProduct": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    graphql.FieldConfigArgument{"productId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: adminOnly(resolveDeleteProduct),
			},
			"deleteComponent": &graphql.Field{
				Type:    graphql.Boolean,
				Args:    graphql.FieldConfigArgument{"componentId": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)}},
				Resolve: adminOnly(resolveDeleteComponent),
			},
		},
	})

	s, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType, Mutation: mutationType})
	if err != nil {
		panic(err)
	}
	return s
}

type graphqlRequest struct {
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
	OperationName string                 `json:"operationName"`
}

// GraphQL handles POST /graphql.
func GraphQL(c *gin.Context) {
	var req graphqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ctx := context.WithValue(c.Request.Context(), requestKey{}, c.Request)
	result := graphql.Do(graphql.Params{
		Schema:         schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	c.JSON(http.StatusOK, result)
}
