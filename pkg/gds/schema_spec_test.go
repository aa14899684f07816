package gds_test

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

func locationSchema() gds.SchemaDefinition {
	return gds.SchemaDefinition{
		EdgeIndexes: []gds.SchemaIndex{},
		EdgeLabels:  []gds.EdgeLabel{{Name: "route", Multiplicity: gds.MultiplicitySimple}},
		PropertyKeys: []gds.PropertyKey{
			{Name: "city", DataType: gds.DataTypeString, Cardinality: gds.CardinalitySingle},
			{Name: "now", DataType: gds.DataTypeString, Cardinality: gds.CardinalitySingle},
		},
		VertexIndexes: []gds.SchemaIndex{{Name: "cityIndex", PropertyKeys: []string{"city"}, Composite: true, Unique: true}},
		VertexLabels:  []gds.VertexLabel{{Name: "location"}},
	}
}

var _ = Describe("Schema", func() {
	var (
		mock   *mockService
		client *gds.Client
		ctx    context.Context
	)

	BeforeEach(func() {
		mock = newMockService()
		DeferCleanup(mock.Close)
		client = newTestClient(mock)
		ctx = context.Background()
	})

	It("updates the schema - POST /schema", func() {
		schema := locationSchema()
		mock.reply(http.MethodPost, "/schema", http.StatusOK, sampleEnvelope([]any{schema}))

		env, err := client.Schema().Set(ctx, schema)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.RequestID).To(Equal("71e9b56e-bded-402e-8fac-cfc83aec9c31"))

		applied, ok := env.Applied()
		Expect(ok).To(BeTrue())
		Expect(applied.Equal(schema)).To(BeTrue())
		Expect(mock.pending()).To(BeEmpty())

		var sent map[string]any
		Expect(json.Unmarshal(mock.recorded()[0].Body, &sent)).To(Succeed())
		Expect(sent).To(HaveKeyWithValue("edgeIndexes", BeEmpty()))
		Expect(sent).To(HaveKey("vertexLabels"))
	})

	It("gets the schema - GET /schema", func() {
		mock.reply(http.MethodGet, "/schema", http.StatusOK, sampleEnvelope([]any{locationSchema()}))

		env, err := client.Schema().Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Result.Data).To(HaveLen(1))
		Expect(env.Result.Data[0].VertexLabels).To(Equal([]gds.VertexLabel{{Name: "location"}}))
		Expect(env.Status.Code).To(Equal(200))
	})

	It("reads back what was set, in order", func() {
		var stored json.RawMessage
		mock.replyWith(http.MethodPost, "/schema", func(body []byte) (int, any) {
			stored = append(json.RawMessage(nil), body...)
			return http.StatusOK, sampleEnvelope([]json.RawMessage{stored})
		}).replyWith(http.MethodGet, "/schema", func([]byte) (int, any) {
			return http.StatusOK, sampleEnvelope([]json.RawMessage{stored})
		})

		schema := locationSchema()
		schema.PropertyKeys = append(schema.PropertyKeys, gds.PropertyKey{
			Name: "age", DataType: gds.DataTypeInteger, Cardinality: gds.CardinalityList,
		})
		_, err := client.Schema().Set(ctx, schema)
		Expect(err).NotTo(HaveOccurred())

		env, err := client.Schema().Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		got, ok := env.Applied()
		Expect(ok).To(BeTrue())
		Expect(got.Equal(schema)).To(BeTrue())
		Expect(got.PropertyKeys[2].Name).To(Equal("age"))
	})

	It("accepts a blank schema", func() {
		mock.reply(http.MethodPost, "/schema", http.StatusOK, sampleEnvelope([]any{gds.SchemaDefinition{}}))

		env, err := client.Schema().Set(ctx, gds.SchemaDefinition{})
		Expect(err).NotTo(HaveOccurred())
		applied, ok := env.Applied()
		Expect(ok).To(BeTrue())
		Expect(applied.Equal(gds.SchemaDefinition{})).To(BeTrue())

		Expect(string(mock.recorded()[0].Body)).To(MatchJSON(
			`{"edgeIndexes":[],"edgeLabels":[],"propertyKeys":[],"vertexIndexes":[],"vertexLabels":[]}`))
	})

	It("treats an empty result as no schema", func() {
		mock.reply(http.MethodGet, "/schema", http.StatusOK, sampleEnvelope(nil))

		env, err := client.Schema().Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(env.Result.Data).To(BeEmpty())
		_, ok := env.Applied()
		Expect(ok).To(BeFalse())
	})

	It("delivers set results through the callback form", func() {
		schema := locationSchema()
		mock.reply(http.MethodPost, "/schema", http.StatusOK, sampleEnvelope([]any{schema}))

		var (
			got    *gds.SchemaEnvelope
			gotErr error
		)
		client.Schema().SetAsync(ctx, schema, func(env *gds.SchemaEnvelope, err error) {
			got, gotErr = env, err
		}).Wait()

		Expect(gotErr).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got.Result.Data).To(HaveLen(1))
	})

	It("rejects an invalid schema without calling the service", func() {
		schema := locationSchema()
		schema.PropertyKeys[0].Cardinality = "MANY"

		env, err := client.Schema().Set(ctx, schema)
		Expect(env).To(BeNil())
		var verr *gds.ValidationError
		Expect(err).To(BeAssignableToTypeOf(verr))
		Expect(err.(*gds.ValidationError).Details).To(HaveKey("propertyKeys[0].cardinality"))
		Expect(mock.recorded()).To(BeEmpty())
	})

	It("surfaces a malformed body as a parse error", func() {
		mock.reply(http.MethodGet, "/schema", http.StatusOK, "{not json")

		_, err := client.Schema().Get(ctx)
		var perr *gds.ParseError
		Expect(err).To(BeAssignableToTypeOf(perr))
		Expect(gds.StatusCode(err)).To(Equal(http.StatusOK))
	})
})
