package payment_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/frahmantamala/tradedesk/internal/payment"
	"github.com/frahmantamala/tradedesk/internal/paymentgateway"
	"github.com/frahmantamala/tradedesk/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Handler", func() {
	var (
		env    *testEnv
		router chi.Router
	)

	do := func(method, path string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	errorCode := func(rec *httptest.ResponseRecorder) string {
		var envelope struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		Expect(json.Unmarshal(rec.Body.Bytes(), &envelope)).To(Succeed())
		return envelope.Error.Code
	}

	BeforeEach(func() {
		env = newTestEnv(false)
		h := payment.NewHandler(transport.NewBaseHandler(env.logger), env.checkout, env.completion)
		r := chi.NewRouter()
		r.Post("/orders/course", h.OrderCourse)
		r.Post("/orders/workshop", h.OrderWorkshop)
		r.Post("/orders/service", h.OrderService)
		r.Post("/payments/{id}/complete", h.Complete)
		r.Post("/payments/{id}/fail", h.Fail)
		r.Get("/payments/{id}", h.Get)
		r.Get("/admin/payments", h.List)
		router = r
	})

	It("runs a checkout through completion over HTTP", func() {
		c := env.course(4999, true)

		rec := do(http.MethodPost, "/orders/course", map[string]interface{}{"course_id": c.ID, "name": "Asha", "email": "asha@example.com"})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var checkout payment.CheckoutResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &checkout)).To(Succeed())
		Expect(checkout.PaymentID).NotTo(BeZero())

		rec = do(http.MethodPost, fmt.Sprintf("/payments/%d/complete", checkout.PaymentID), payment.CompleteDTO{
			GatewayOrderID:   checkout.GatewayOrderID,
			GatewayPaymentID: "pay_http",
			GatewaySignature: paymentgateway.SignCompletion(gatewaySecret, checkout.GatewayOrderID, "pay_http"),
		})
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodGet, fmt.Sprintf("/payments/%d?receipt=%s", checkout.PaymentID, checkout.Receipt), nil)
		Expect(rec.Code).To(Equal(http.StatusOK))
		var view payment.StatusView
		Expect(json.Unmarshal(rec.Body.Bytes(), &view)).To(Succeed())
		Expect(view.Status).To(Equal("completed"))
		Expect(rec.Body.String()).NotTo(ContainSubstring("asha@example.com"))
	})

	It("maps domain errors to the error envelope", func() {
		rec := do(http.MethodPost, "/orders/workshop", map[string]interface{}{"workshop_id": 77, "name": "Ravi", "email": "ravi@example.com"})
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(rec)).To(Equal("WORKSHOP_NOT_FOUND"))

		rec = do(http.MethodPost, "/payments/abc/complete", map[string]string{})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodGet, "/payments/12345?receipt=rcpt_x", nil)
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(errorCode(rec)).To(Equal("PAYMENT_NOT_FOUND"))
	})

	It("returns 400 for an invalid signature", func() {
		svc := env.service(2500)
		rec := do(http.MethodPost, "/orders/service", map[string]interface{}{"service_id": svc.ID, "name": "Meera", "email": "meera@example.com"})
		Expect(rec.Code).To(Equal(http.StatusCreated))
		var checkout payment.CheckoutResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &checkout)).To(Succeed())

		rec = do(http.MethodPost, fmt.Sprintf("/payments/%d/complete", checkout.PaymentID), payment.CompleteDTO{
			GatewayOrderID: checkout.GatewayOrderID, GatewayPaymentID: "pay_x", GatewaySignature: "forged",
		})
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
		Expect(errorCode(rec)).To(Equal("INVALID_SIGNATURE"))
	})

	It("requires the order id on a fail callback", func() {
		c := env.course(999, true)
		rec := do(http.MethodPost, "/orders/course", map[string]interface{}{"course_id": c.ID, "name": "Asha", "email": "asha@example.com"})
		var checkout payment.CheckoutResponse
		Expect(json.Unmarshal(rec.Body.Bytes(), &checkout)).To(Succeed())

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/payments/%d/fail", checkout.PaymentID), nil)
		out := httptest.NewRecorder()
		router.ServeHTTP(out, req)
		Expect(out.Code).To(Equal(http.StatusBadRequest))

		rec = do(http.MethodPost, fmt.Sprintf("/payments/%d/fail", checkout.PaymentID), payment.FailDTO{
			GatewayOrderID: checkout.GatewayOrderID, Reason: "closed the widget",
		})
		Expect(rec.Code).To(Equal(http.StatusOK))
	})
})
