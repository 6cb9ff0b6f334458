package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/geovocab/internal/core/domain"
	"github.com/samirrijal/geovocab/internal/core/page"
)

// buildSchema creates the GraphQL schema over the geovocab API.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoVocabType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoVocab",
		Fields: graphql.Fields{
			"geoVocab":  &graphql.Field{Type: graphql.String},
			"geoHash":   &graphql.Field{Type: graphql.String},
			"latitude":  &graphql.Field{Type: graphql.Float},
			"longitude": &graphql.Field{Type: graphql.Float},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"wordsForCoordinates": &graphql.Field{
				Type:        geoVocabType,
				Description: "The three-word phrase for a point",
				Args: graphql.FieldConfigArgument{
					"lat": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
					"lon": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Float)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					lat := p.Args["lat"].(float64)
					lon := p.Args["lon"].(float64)
					res, err := deps.API.WordsForCoordinates(p.Context, lat, lon)
					if err != nil {
						return nil, userError(err, page.MsgWordsFailed)
					}
					return res, nil
				},
			},
			"locationForWords": &graphql.Field{
				Type:        geoVocabType,
				Description: "The point a three-word phrase names",
				Args: graphql.FieldConfigArgument{
					"words": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					words := p.Args["words"].(string)
					res, err := deps.API.LocationForWords(p.Context, words)
					if err != nil {
						return nil, userError(err, page.MsgLocationFailed)
					}
					return res, nil
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"registerPremium": &graphql.Field{
				Type:        geoVocabType,
				Description: "Bind a chosen phrase to a geohash",
				Args: graphql.FieldConfigArgument{
					"geoHash": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"words":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					geoHash := strings.TrimSpace(p.Args["geoHash"].(string))
					words := strings.TrimSpace(p.Args["words"].(string))
					if geoHash == "" || words == "" {
						return nil, &lookupError{msg: "geoHash and words are required", kind: domain.KindInput}
					}
					res, err := deps.API.RegisterPremium(p.Context, geoHash, words)
					if err != nil {
						return nil, userError(err, msgPremiumFailed)
					}
					return res, nil
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})

		return c.JSON(result)
	}
}

const msgPremiumFailed = "Failed to register premium words"

// lookupError is what resolvers return: the user-facing message plus the
// failure kind under extensions.kind.
type lookupError struct {
	msg  string
	kind domain.ErrorKind
}

func (e *lookupError) Error() string { return e.msg }

func (e *lookupError) Extensions() map[string]interface{} {
	if e.kind == "" {
		return nil
	}
	return map[string]interface{}{"kind": string(e.kind)}
}

// userError keeps upstream internals out of GraphQL error messages.
func userError(err error, fallback string) error {
	return &lookupError{msg: domain.UserMessage(err, fallback), kind: domain.KindOf(err)}
}
