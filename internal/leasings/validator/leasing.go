package validator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"plotlease/pkg/clock"
	"plotlease/pkg/logger"
	"plotlease/pkg/model"

	"github.com/go-playground/validator/v10"
)

// Violation codes reported by the booking validator.
const (
	CodeFromOrToMissing      = "from-or-to-missing"
	CodeFromAfterTo          = "from-after-to"
	CodeInsufficientLeadTime = "insufficient-lead-time"
	CodePlotNameEmpty        = "plot-name-empty"
	CodeOverlapDetected      = "overlap-detected"
)

// Violation is a single failed booking check.
type Violation struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Code, v.Message)
}

type Violations []Violation

func (v Violations) Error() string {
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d violation(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Codes returns the violation codes in evaluation order.
func (v Violations) Codes() []string {
	codes := make([]string, 0, len(v))
	for _, violation := range v {
		codes = append(codes, violation.Code)
	}
	return codes
}

// BookingRequest is the plain-data input of a leasing creation. From and To
// are pointers so a missing instant is distinguishable from a zero one.
type BookingRequest struct {
	PlotID           string     `json:"plot_id" validate:"required,mongodb"`
	UserID           string     `json:"user_id" validate:"required,mongodb"`
	PlotName         string     `json:"plot_name"`
	From             *time.Time `json:"from"`
	To               *time.Time `json:"to"`
	PaymentSessionID string     `json:"payment_session_id" validate:"omitempty,max=200"`
}

// OverlapResolver reports the leasings that block a requested range. The
// concrete resolver lives in the service layer; the validator only depends on
// this interface.
type OverlapResolver interface {
	FindBlocking(ctx context.Context, plotID, requesterID string, from, to time.Time) ([]*model.Leasing, error)
}

type LeasingValidator struct {
	validate     *validator.Validate
	resolver     OverlapResolver
	clock        clock.Clock
	leadTimeDays int
	logger       *logger.Logger
}

func NewLeasingValidator(resolver OverlapResolver, clk clock.Clock, leadTimeDays int, log *logger.Logger) *LeasingValidator {
	return &LeasingValidator{
		validate:     validator.New(),
		resolver:     resolver,
		clock:        clk,
		leadTimeDays: leadTimeDays,
		logger:       log,
	}
}

// ValidateRequest checks the identifier shape of the request before any
// domain check runs. Failures here are malformed input, not violations.
func (v *LeasingValidator) ValidateRequest(req *BookingRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

// ValidateBooking evaluates every booking check and returns the full
// violation list; checks are not short-circuited, so a caller sees all
// failures at once. The overlap check only runs when the range itself is
// well-formed. The returned error is reserved for resolver failures.
func (v *LeasingValidator) ValidateBooking(ctx context.Context, req *BookingRequest) (Violations, error) {
	var violations Violations

	if req.From == nil || req.To == nil {
		violations = append(violations, Violation{
			Code:    CodeFromOrToMissing,
			Field:   "from",
			Message: "both from and to must be provided",
		})
	}

	rangeValid := req.From != nil && req.To != nil && req.From.Before(*req.To)
	if req.From != nil && req.To != nil && !rangeValid {
		violations = append(violations, Violation{
			Code:    CodeFromAfterTo,
			Field:   "from",
			Message: "from must be before to",
		})
	}

	if req.From != nil {
		if violation := v.checkLeadTime(*req.From); violation != nil {
			violations = append(violations, *violation)
		}
	}

	if strings.TrimSpace(req.PlotName) == "" {
		violations = append(violations, Violation{
			Code:    CodePlotNameEmpty,
			Field:   "plot_name",
			Message: "plot name must not be empty",
		})
	}

	if rangeValid {
		blocking, err := v.resolver.FindBlocking(ctx, req.PlotID, req.UserID, *req.From, *req.To)
		if err != nil {
			return nil, err
		}
		if len(blocking) > 0 {
			violations = append(violations, Violation{
				Code:    CodeOverlapDetected,
				Field:   "from",
				Message: fmt.Sprintf("requested range conflicts with %d existing leasing(s)", len(blocking)),
			})
		}
	}

	if len(violations) > 0 {
		v.logger.Debug("Booking validation failed",
			"plot_id", req.PlotID,
			"user_id", req.UserID,
			"violations", violations.Codes(),
		)
	}

	return violations, nil
}

// checkLeadTime enforces the minimum notice rule: from must be strictly
// after now plus the lead time. A start exactly at the boundary fails.
func (v *LeasingValidator) checkLeadTime(from time.Time) *Violation {
	earliest := v.clock.Now().Add(time.Duration(v.leadTimeDays) * 24 * time.Hour)
	if from.After(earliest) {
		return nil
	}
	return &Violation{
		Code:    CodeInsufficientLeadTime,
		Field:   "from",
		Message: fmt.Sprintf("from must be more than %d days in the future", v.leadTimeDays),
	}
}

func (v *LeasingValidator) translateValidationErrors(errs validator.ValidationErrors) Violations {
	var violations Violations

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}

		violations = append(violations, Violation{
			Code:    "invalid-" + strings.ToLower(err.Field()),
			Field:   err.Field(),
			Message: message,
		})
	}

	return violations
}
