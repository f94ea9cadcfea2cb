// Package validation centraliza la validación de DTOs de entrada con go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/dailybakes-api/internal/domain"
	"github.com/jhoicas/dailybakes-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Error detalle de una validación fallida. Fields va por nombre JSON del campo.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return fmt.Sprintf("%s: %s", domain.ErrInvalidInput, strings.Join(keys, ", "))
}

// Unwrap permite errors.Is(err, domain.ErrInvalidInput).
func (e *Error) Unwrap() error { return domain.ErrInvalidInput }

var (
	once     sync.Once
	validate *validator.Validate
)

func instance() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "query"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					continue
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		// decimal.Decimal se valida como float64 (gt, gte, lte).
		v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		if err := v.RegisterValidation("decimal_scale", decimalScale); err != nil {
			panic(fmt.Sprintf("validation: registrar %q: %v", "decimal_scale", err))
		}
		mustRegister(v, "unit", entity.Units)
		mustRegister(v, "payment_method", entity.PaymentMethods)
		mustRegister(v, "membership_type", entity.MembershipTypes)
		mustRegister(v, "role", entity.Roles)
		validate = v
	})
	return validate
}

func mustRegister(v *validator.Validate, tag string, allowed []string) {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("validation: registrar %q: %v", tag, err))
	}
}

// decimalScale limita los decimales (decimal_scale=3) para que la BD no redondee el valor.
// El type func ya convirtió el campo a float64: se lee el decimal original desde el struct padre.
func decimalScale(fl validator.FieldLevel) bool {
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		panic(fmt.Sprintf("validation: decimal_scale=%q", fl.Param()))
	}
	var d decimal.Decimal
	parent := reflect.Indirect(fl.Parent())
	orig := reflect.Value{}
	if parent.Kind() == reflect.Struct {
		orig = parent.FieldByName(fl.StructFieldName())
	}
	switch v := valueOf(orig).(type) {
	case decimal.Decimal:
		d = v
	case *decimal.Decimal:
		if v == nil {
			return true
		}
		d = *v
	default:
		if fl.Field().Kind() != reflect.Float64 {
			return false
		}
		d = decimal.NewFromFloat(fl.Field().Float())
	}
	return entity.FitsScale(d, int32(places))
}

func valueOf(v reflect.Value) interface{} {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	return v.Interface()
}

// Struct valida v según sus tags. Devuelve *Error (envuelve domain.ErrInvalidInput) con un
// mensaje por campo.
func Struct(v interface{}) error {
	err := instance().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = message(fe)
	}
	return &Error{Fields: fields}
}

// fieldPath quita el nombre del struct raíz: "CreateSaleRequest.items[0].quantity" → "items[0].quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "es requerido"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener al menos %s caracteres", fe.Param())
		}
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("debe tener al menos %s elementos", fe.Param())
		}
		return fmt.Sprintf("debe ser al menos %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("debe tener como máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("debe ser como máximo %s", fe.Param())
	case "email":
		return "debe ser un email válido"
	case "gt":
		return fmt.Sprintf("debe ser mayor que %s", fe.Param())
	case "gte":
		return fmt.Sprintf("debe ser mayor o igual a %s", fe.Param())
	case "lte":
		return fmt.Sprintf("debe ser menor o igual a %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("debe ser uno de: %s", fe.Param())
	case "decimal_scale":
		return fmt.Sprintf("admite como máximo %s decimales", fe.Param())
	case "datetime":
		return "debe tener formato YYYY-MM-DD"
	case "unit":
		return "unidad inválida: " + strings.Join(entity.Units, ", ")
	case "payment_method":
		return "método de pago inválido: " + strings.Join(entity.PaymentMethods, ", ")
	case "membership_type":
		return "membresía inválida: " + strings.Join(entity.MembershipTypes, ", ")
	case "role":
		return "rol inválido: " + strings.Join(entity.Roles, ", ")
	default:
		return "es inválido"
	}
}
