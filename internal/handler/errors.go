package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/bakery_api/internal/importer"
	"github.com/GTDGit/bakery_api/internal/pricing"
	"github.com/GTDGit/bakery_api/internal/utils"
	"github.com/GTDGit/bakery_api/internal/validation"
)

type apiError struct {
	status  int
	message string
}

// Known domain errors and how they are answered. The error code is the
// sentinel's text.
var apiErrors = map[error]apiError{
	utils.ErrNotFound:                {http.StatusNotFound, "Not found"},
	utils.ErrProductNotFound:         {http.StatusNotFound, "Product not found"},
	utils.ErrOrderNotFound:           {http.StatusNotFound, "Order not found"},
	utils.ErrCustomRequestNotFound:   {http.StatusNotFound, "Custom request not found"},
	utils.ErrPromoNotFound:           {http.StatusNotFound, "Promo code not found"},
	utils.ErrUserNotFound:            {http.StatusNotFound, "User not found"},
	utils.ErrNotificationNotFound:    {http.StatusNotFound, "Notification not found"},
	utils.ErrProductUnavailable:      {http.StatusConflict, "Product is not available"},
	utils.ErrOutOfStock:              {http.StatusConflict, "Not enough stock"},
	utils.ErrInvalidWeight:           {http.StatusBadRequest, "Weight is outside the allowed range"},
	utils.ErrPincodeNotServed:        {http.StatusUnprocessableEntity, "We do not deliver to this pincode yet"},
	utils.ErrInvalidStatusTransition: {http.StatusConflict, "Order status cannot change this way"},
	utils.ErrInvalidTrackingStep:     {http.StatusBadRequest, "Unknown tracking step"},
	utils.ErrEmptyCart:               {http.StatusBadRequest, "Cart is empty"},
	utils.ErrPaymentUnavailable:      {http.StatusUnprocessableEntity, "Online payment is not available yet, please choose cash or UPI"},
	utils.ErrPromoExists:             {http.StatusConflict, "Promo code already exists"},
	utils.ErrInvalidCredentials:      {http.StatusUnauthorized, "Invalid email or password"},
	utils.ErrAccountInactive:         {http.StatusForbidden, "Account is disabled"},
	utils.ErrInvalidToken:            {http.StatusUnauthorized, "Invalid or expired token"},
	utils.ErrStorageDisabled:         {http.StatusServiceUnavailable, "Image uploads are not configured"},
}

// respondError maps err onto the response envelope. Unknown errors are
// logged and answered with a generic 500 carrying fallback.
func respondError(c *gin.Context, err error, fallback string) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		utils.ErrorWithData(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), gin.H{"fields": verr.Fields})
		return
	}

	var ierr *importer.Error
	if errors.As(err, &ierr) {
		switch ierr.Kind {
		case importer.ParseFailure, importer.InvalidFormat:
			utils.Error(c, http.StatusBadRequest, string(ierr.Kind), ierr.Error())
		default:
			log.Error().Err(err).Str("kind", string(ierr.Kind)).Msg(fallback)
			utils.Error(c, http.StatusInternalServerError, string(ierr.Kind), ierr.Message)
		}
		return
	}

	if errors.Is(err, pricing.ErrPromoInvalid) {
		utils.Error(c, http.StatusBadRequest, "PROMO_INVALID", capitalize(err.Error()))
		return
	}

	for sentinel, ae := range apiErrors {
		if errors.Is(err, sentinel) {
			msg := ae.message
			if detail := strings.TrimPrefix(err.Error(), sentinel.Error()+": "); detail != err.Error() {
				msg += ": " + detail
			}
			utils.Error(c, ae.status, sentinel.Error(), msg)
			return
		}
	}

	log.Error().Err(err).Str("path", c.FullPath()).Msg(fallback)
	utils.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
}

func badRequest(c *gin.Context, message string) {
	utils.Error(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
