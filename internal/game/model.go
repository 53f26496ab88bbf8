package game

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	SaveVersion = 1
	GameVersion = "1.2.0"

	// Cash, debt and prices are in millions; day-rates and opex in thousands per day.
	DaysPerMonth = 30

	PlayerCompanyID = "player"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidBid        = errors.New("invalid bid")
	ErrIneligibleRig     = errors.New("rig not eligible for tender")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrUnderContract     = errors.New("rig is under contract")
	ErrInTransit         = errors.New("rig is in transit")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidAmount     = errors.New("amount must be > 0")
	ErrLoanLimit         = errors.New("loan exceeds credit limit")
	ErrWrongPhase        = errors.New("operation not allowed in current turn phase")
	ErrBankrupt          = errors.New("company is bankrupt")
	ErrCorruptSave       = errors.New("corrupt save")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

type RigType string

const (
	RigJackup    RigType = "jackup"
	RigSemi      RigType = "semisub"
	RigDrillship RigType = "drillship"
)

// RigTypes is ordered; random draws index into it.
var RigTypes = []RigType{RigJackup, RigSemi, RigDrillship}

type RigState string

const (
	StateActive RigState = "active"
	StateWarm   RigState = "warm"
	StateCold   RigState = "cold"
	StateScrap  RigState = "scrap"
)

type Region string

const (
	RegionNorthSea Region = "north_sea"
	RegionGOM      Region = "gom"
	RegionBrazil   Region = "brazil"
)

var Regions = []Region{RegionNorthSea, RegionGOM, RegionBrazil}

type ContractCategory string

const (
	CategoryExploration ContractCategory = "exploration"
	CategoryDevelopment ContractCategory = "development"
	CategoryWorkover    ContractCategory = "workover"
)

type RigClass string

const (
	ClassJackup          RigClass = "jackup"
	ClassSemi            RigClass = "semi"
	ClassDrillship       RigClass = "drillship"
	ClassSemiOrDrillship RigClass = "semi_or_drillship"
)

type Positioning string

const (
	PositioningAny        Positioning = "any"
	PositioningMooredOK   Positioning = "moored_ok"
	PositioningDPRequired Positioning = "dp_required"
)

// Accepts reports whether a rig of type t satisfies the class requirement.
func (c RigClass) Accepts(t RigType) bool {
	switch c {
	case ClassJackup:
		return t == RigJackup
	case ClassSemi:
		return t == RigSemi
	case ClassDrillship:
		return t == RigDrillship
	case ClassSemiOrDrillship:
		return t == RigSemi || t == RigDrillship
	default:
		return false
	}
}

func ParseRigType(s string) (RigType, error) {
	switch v := RigType(strings.ToLower(strings.TrimSpace(s))); v {
	case RigJackup, RigSemi, RigDrillship:
		return v, nil
	}
	return "", fmt.Errorf("unknown rig type %q", s)
}

func ParseRigState(s string) (RigState, error) {
	switch v := RigState(strings.ToLower(strings.TrimSpace(s))); v {
	case StateActive, StateWarm, StateCold, StateScrap:
		return v, nil
	}
	return "", fmt.Errorf("unknown rig state %q", s)
}

func ParseRegion(s string) (Region, error) {
	v := Region(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range Regions {
		if r == v {
			return v, nil
		}
	}
	return "", fmt.Errorf("unknown region %q", s)
}

func validCategory(c ContractCategory) bool {
	return c == CategoryExploration || c == CategoryDevelopment || c == CategoryWorkover
}

func validClass(c RigClass) bool {
	return c == ClassJackup || c == ClassSemi || c == ClassDrillship || c == ClassSemiOrDrillship
}

func validPositioning(p Positioning) bool {
	return p == PositioningAny || p == PositioningMooredOK || p == PositioningDPRequired
}

// Result is the (success, message) pair handed to presentation layers.
type Result struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func ResultOf(err error, okMessage string) Result {
	if err != nil {
		return Result{OK: false, Message: err.Error()}
	}
	return Result{OK: true, Message: okMessage}
}

// IsRejection reports whether err is a validation rejection rather than a fault.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrInvalidBid, ErrIneligibleRig, ErrIllegalTransition, ErrUnderContract,
		ErrInTransit, ErrInsufficientFunds, ErrInvalidAmount, ErrLoanLimit, ErrWrongPhase, ErrBankrupt,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func roundTenth(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(1).Float64()
	return f
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func errorf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}
