package validation_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/okian/bilanz/internal/domain/model"
	"github.com/okian/bilanz/internal/domain/validation"
	. "github.com/smartystreets/goconvey/convey"
)

func validPair() []validation.RawPeriod {
	return []validation.RawPeriod{
		{"label": "Jahr 1", "AV": 100.0, "UV": 50.0, "EK": 80.0, "LFK": 30.0, "KFK": 40.0},
		{"label": "Jahr 2", "AV": 0, "UV": 10, "EK": 5, "LFK": 1, "KFK": 2},
	}
}

func TestValidate(t *testing.T) {
	Convey("Given raw input for two periods", t, func() {
		raw := validPair()

		Convey("When every field is a finite number", func() {
			periods, err := validation.Validate(raw)

			Convey("Then typed periods are returned in input order", func() {
				So(err, ShouldBeNil)
				So(periods[0], ShouldResemble, model.Period{Label: "Jahr 1", AV: 100, UV: 50, EK: 80, LFK: 30, KFK: 40})
				So(periods[1].Label, ShouldEqual, "Jahr 2")
				So(periods[1].AV, ShouldEqual, 0.0)
				So(periods[1].KFK, ShouldEqual, 2.0)
			})
		})

		Convey("When a field is missing", func() {
			delete(raw[1], "EK")
			_, err := validation.Validate(raw)

			Convey("Then a validation error names the field and period", func() {
				var verr *model.ValidationError
				So(errors.As(err, &verr), ShouldBeTrue)
				So(verr.Field, ShouldEqual, model.FieldEK)
				So(verr.Period, ShouldEqual, "Jahr 2")
				So(verr.Index, ShouldEqual, 1)
				So(verr.Reason, ShouldEqual, "missing")
			})
		})

		Convey("When a value is not finite", func() {
			raw[0]["UV"] = math.Inf(1)
			_, err := validation.Validate(raw)

			Convey("Then it is rejected", func() {
				So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "not a finite number")
			})
		})

		Convey("When a value is NaN text", func() {
			raw[0]["UV"] = "NaN"
			_, err := validation.Validate(raw)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When a value is not numeric", func() {
			raw[0]["KFK"] = "viel"
			_, err := validation.Validate(raw)
			var verr *model.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, model.FieldKFK)
		})

		Convey("When a value is a boolean", func() {
			raw[0]["AV"] = true
			_, err := validation.Validate(raw)
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When negative and zero values are given", func() {
			raw[0]["EK"] = -20
			raw[0]["KFK"] = 0
			periods, err := validation.Validate(raw)

			Convey("Then they are accepted", func() {
				So(err, ShouldBeNil)
				So(periods[0].EK, ShouldEqual, -20.0)
				So(periods[0].KFK, ShouldEqual, 0.0)
			})
		})

		Convey("When labels collide", func() {
			raw[1]["label"] = "Jahr 1"
			_, err := validation.Validate(raw)
			var verr *model.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, model.FieldLabel)
			So(verr.Index, ShouldEqual, 1)
		})

		Convey("When only one period is given", func() {
			_, err := validation.Validate(raw[:1])
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "expected 2 periods, got 1")
		})

		Convey("When three periods are given", func() {
			_, err := validation.Validate(append(raw, raw[0]))
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})
	})
}

func TestValidateOne(t *testing.T) {
	Convey("Given form and decoder specific raw values", t, func() {
		Convey("When values arrive as form strings", func() {
			p, err := validation.ValidateOne(0, validation.RawPeriod{
				"Jahr": " 2023 ", "AV": " 1200,5 ", "UV": "300", "EK": "1.5e2", "LFK": "-4", "KFK": "7.25",
			})

			Convey("Then they are parsed, with a decimal comma accepted", func() {
				So(err, ShouldBeNil)
				So(p.Label, ShouldEqual, "2023")
				So(p.AV, ShouldEqual, 1200.5)
				So(p.EK, ShouldEqual, 150.0)
				So(p.LFK, ShouldEqual, -4.0)
				So(p.KFK, ShouldEqual, 7.25)
			})
		})

		Convey("When values are json.Number and integer kinds", func() {
			p, err := validation.ValidateOne(1, validation.RawPeriod{
				"AV": json.Number("10.5"), "UV": int64(3), "EK": uint8(2), "LFK": float32(0.5), "KFK": 1,
			})

			Convey("Then the label defaults to the position", func() {
				So(err, ShouldBeNil)
				So(p.Label, ShouldEqual, "Jahr 2")
				So(p.AV, ShouldEqual, 10.5)
				So(p.UV, ShouldEqual, 3.0)
				So(p.EK, ShouldEqual, 2.0)
				So(p.LFK, ShouldEqual, 0.5)
			})
		})

		Convey("When a string holds both separators", func() {
			_, err := validation.ValidateOne(0, validation.RawPeriod{
				"AV": "1.200,5", "UV": 1, "EK": 1, "LFK": 1, "KFK": 1,
			})
			So(errors.Is(err, model.ErrValidation), ShouldBeTrue)
		})

		Convey("When the label is not text", func() {
			_, err := validation.ValidateOne(0, validation.RawPeriod{
				"label": []string{"x"}, "AV": 1, "UV": 1, "EK": 1, "LFK": 1, "KFK": 1,
			})
			var verr *model.ValidationError
			So(errors.As(err, &verr), ShouldBeTrue)
			So(verr.Field, ShouldEqual, model.FieldLabel)
		})

		Convey("When a value is nil", func() {
			_, err := validation.ValidateOne(0, validation.RawPeriod{
				"AV": nil, "UV": 1, "EK": 1, "LFK": 1, "KFK": 1,
			})
			So(err.Error(), ShouldEqual, "period Jahr 1: field AV: missing")
		})
	})
}
