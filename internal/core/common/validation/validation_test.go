package validation_test

import (
	"github.com/frahmantamala/tradedesk/internal"
	"github.com/frahmantamala/tradedesk/internal/core/common/validation"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type signup struct {
	Name  string `json:"name" validate:"required,max=10"`
	Email string `json:"email" validate:"required,email"`
	Level string `json:"experience_level" validate:"omitempty,oneof=beginner advanced"`
}

func fields(err *internal.AppError) []string {
	details, ok := err.Details.(internal.ValidationErrors)
	Expect(ok).To(BeTrue())
	var out []string
	for _, e := range details.Errors {
		out = append(out, e.Field)
	}
	return out
}

var _ = Describe("Struct", func() {
	It("passes a valid payload", func() {
		Expect(validation.Struct(signup{Name: "Asha", Email: "asha@example.com"})).To(BeNil())
	})

	It("reports failures by json field name", func() {
		err := validation.Struct(signup{Name: "", Email: "nope", Level: "expert"})
		Expect(err).NotTo(BeNil())
		Expect(err.StatusCode).To(Equal(400))
		Expect(fields(err)).To(ConsistOf("name", "email", "experience_level"))
	})

	It("flags invalid emails with the email code", func() {
		err := validation.Struct(signup{Name: "Asha", Email: "asha"})
		details := err.Details.(internal.ValidationErrors)
		Expect(details.Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidEmail)))
	})
})

var _ = Describe("builder", func() {
	It("collects every failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "").Required()
		v.Field("email", "bad@").Email()
		err := v.Validate()
		Expect(err).NotTo(BeNil())
		Expect(fields(err)).To(Equal([]string{"name", "email"}))
	})

	It("validates currencies against an allow-list", func() {
		Expect(validation.ValidateCurrency("inr", []string{"INR", "USD"})).To(BeNil())
		err := validation.ValidateCurrency("EUR", []string{"INR", "USD"})
		Expect(err).NotTo(BeNil())
		Expect(err.Details.(internal.ValidationErrors).Errors[0].Code).To(Equal(string(internal.ErrCodeInvalidCurrency)))
	})

	It("rejects zero charge amounts", func() {
		Expect(validation.ValidateChargeAmount(0)).NotTo(BeNil())
		Expect(validation.ValidateChargeAmount(499)).To(BeNil())
	})

	DescribeTable("IsEmail",
		func(in string, ok bool) { Expect(validation.IsEmail(in)).To(Equal(ok)) },
		Entry("plain", "a@b.co", true),
		Entry("no tld", "a@b", false),
		Entry("display name", "Asha <a@b.co>", false),
		Entry("empty", "", false),
	)
})
