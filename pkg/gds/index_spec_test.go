package gds_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/samvad-hq/gds-client/pkg/gds"
)

func personIndex(name string) gds.IndexDefinition {
	return gds.IndexDefinition{
		Type: gds.IndexTypeVertex,
		PropertyKeys: []gds.PropertyKey{{
			Name:        "name",
			DataType:    gds.DataTypeString,
			Cardinality: gds.CardinalitySingle,
		}},
		IndexOnly: map[string]string{"name": "person"},
		Composite: true,
		Name:      name,
	}
}

func newTestClient(mock *mockService) *gds.Client {
	client, err := gds.New(gds.Config{URL: mock.URL(), Username: testUser, Password: testPassword})
	Expect(err).NotTo(HaveOccurred())
	return client
}

var _ = Describe("Index", func() {
	var (
		mock      *mockService
		client    *gds.Client
		ctx       context.Context
		indexName string
	)

	BeforeEach(func() {
		mock = newMockService()
		DeferCleanup(mock.Close)
		client = newTestClient(mock)
		ctx = context.Background()
		indexName = uuid.NewString()
	})

	It("retrieves a list of indexes - GET /index", func() {
		mock.reply(http.MethodGet, "/index", http.StatusOK, map[string]any{"graphs": []string{"g", "foo"}})

		names, err := client.Index().List(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(names).To(Equal([]string{"g", "foo"}))
		Expect(mock.pending()).To(BeEmpty())
	})

	It("adds a new index - POST /index", func() {
		mock.reply(http.MethodPost, "/index", http.StatusCreated, map[string]any{})

		data, err := client.Index().Create(ctx, personIndex(indexName))
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(gds.Object{}))
		Expect(mock.pending()).To(BeEmpty())

		reqs := mock.recorded()
		Expect(reqs).To(HaveLen(1))
		var sent map[string]any
		Expect(json.Unmarshal(reqs[0].Body, &sent)).To(Succeed())
		Expect(sent).To(HaveKeyWithValue("name", indexName))
		Expect(sent).To(HaveKeyWithValue("type", "vertex"))
		Expect(sent).To(HaveKeyWithValue("composite", true))
		Expect(sent).To(HaveKeyWithValue("indexOnly", map[string]any{"name": "person"}))
	})

	It("gets an index - GET /index/{name}", func() {
		mock.reply(http.MethodGet, "/index/"+indexName, http.StatusCreated, map[string]any{})

		data, err := client.Index().Get(ctx, indexName)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(gds.Object{}))
		Expect(mock.pending()).To(BeEmpty())
	})

	It("deletes an index after creating it", func() {
		mock.reply(http.MethodPost, "/index", http.StatusCreated, map[string]any{}).
			reply(http.MethodDelete, "/index/"+indexName, http.StatusOK, map[string]any{})

		_, err := client.Index().Create(ctx, personIndex(indexName))
		Expect(err).NotTo(HaveOccurred())

		data, err := client.Index().Delete(ctx, indexName)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).NotTo(BeNil())
		Expect(mock.pending()).To(BeEmpty())
	})

	It("checks index status through the callback form", func() {
		mock.reply(http.MethodPost, "/index", http.StatusCreated, map[string]any{}).
			reply(http.MethodGet, "/index/"+indexName, http.StatusCreated, map[string]any{"status": "ENABLED"})

		var (
			calls     atomic.Int32
			createErr error
			got       gds.Object
			gotErr    error
		)
		client.Index().CreateAsync(ctx, personIndex(indexName), func(_ gds.Object, err error) {
			createErr = err
			if err != nil {
				return
			}
			client.Index().StatusAsync(ctx, indexName, func(data gds.Object, err error) {
				calls.Add(1)
				got, gotErr = data, err
			}).Wait()
		}).Wait()

		Expect(createErr).NotTo(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(gotErr).NotTo(HaveOccurred())
		Expect(got).To(HaveKeyWithValue("status", "ENABLED"))
		Expect(mock.pending()).To(BeEmpty())
	})

	It("returns structurally identical data for repeated gets", func() {
		body := map[string]any{"name": indexName, "status": "ENABLED", "propertyKeys": []any{"name"}}
		mock.reply(http.MethodGet, "/index/"+indexName, http.StatusOK, body).
			reply(http.MethodGet, "/index/"+indexName, http.StatusOK, body)

		first, err := client.Index().Get(ctx, indexName)
		Expect(err).NotTo(HaveOccurred())
		second, err := client.Index().Get(ctx, indexName)
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(Equal(first))
	})

	It("leaves duplicate names to the service", func() {
		mock.reply(http.MethodPost, "/index", http.StatusCreated, map[string]any{}).
			reply(http.MethodPost, "/index", http.StatusConflict, map[string]any{"message": "index exists"})

		_, err := client.Index().Create(ctx, personIndex(indexName))
		Expect(err).NotTo(HaveOccurred())

		data, err := client.Index().Create(ctx, personIndex(indexName))
		Expect(data).To(BeNil())
		var statusErr *gds.HTTPStatusError
		Expect(errors.As(err, &statusErr)).To(BeTrue())
		Expect(statusErr.StatusCode).To(Equal(http.StatusConflict))
		Expect(statusErr.Body).To(ContainSubstring("index exists"))
		Expect(mock.pending()).To(BeEmpty())
	})

	DescribeTable("rejects statuses the operation does not expect",
		func(method, path string, status int, call func(*gds.Client) (any, error)) {
			mock.reply(method, path, status, map[string]any{"message": "nope"})

			data, err := call(client)
			Expect(err).To(HaveOccurred())
			Expect(gds.StatusCode(err)).To(Equal(status))
			Expect(data).To(BeNil())
		},
		Entry("list", http.MethodGet, "/index", http.StatusInternalServerError, func(c *gds.Client) (any, error) {
			names, err := c.Index().List(context.Background())
			return names, err
		}),
		Entry("get", http.MethodGet, "/index/x", http.StatusNotFound, func(c *gds.Client) (any, error) {
			obj, err := c.Index().Get(context.Background(), "x")
			return obj, err
		}),
		Entry("create answered 200", http.MethodPost, "/index", http.StatusOK, func(c *gds.Client) (any, error) {
			obj, err := c.Index().Create(context.Background(), personIndex("x"))
			return obj, err
		}),
		Entry("delete", http.MethodDelete, "/index/x", http.StatusForbidden, func(c *gds.Client) (any, error) {
			obj, err := c.Index().Delete(context.Background(), "x")
			return obj, err
		}),
		Entry("status", http.MethodGet, "/index/x", http.StatusBadGateway, func(c *gds.Client) (any, error) {
			obj, err := c.Index().Status(context.Background(), "x")
			return obj, err
		}),
	)
})
