package domain

import (
	"errors"
	"testing"
)

func validProfile() UserProfile {
	return UserProfile{
		Age:            35,
		CurrentSavings: 50000,
		Income:         75000,
		RetirementAge:  65,
		SavingsGoal:    1000000,
	}
}

func TestValidateProfile_Valid(t *testing.T) {
	cases := []UserProfile{
		validProfile(),
		{Age: 18, Income: 1, RetirementAge: 19},
		{Age: 64, Income: 200000, RetirementAge: 65, CurrentSavings: 900000, SavingsGoal: 1000000, HasMortgage: "yes"},
		{Age: 40, Income: 50000, RetirementAge: 70, HasMortgage: "no"},
	}
	for _, p := range cases {
		if err := ValidateProfile(p); err != nil {
			t.Errorf("expected valid for %+v, got %v", p, err)
		}
	}
}

func TestValidateProfile_RetirementNotAfterAge(t *testing.T) {
	p := validProfile()
	p.Age = 40
	p.RetirementAge = 30
	err := ValidateProfile(p)
	if !errors.Is(err, ErrRetirementNotAfter) {
		t.Errorf("expected ErrRetirementNotAfter, got %v", err)
	}

	p.RetirementAge = 40 // equal is also invalid, years_left would be zero
	if err := ValidateProfile(p); !errors.Is(err, ErrRetirementNotAfter) {
		t.Errorf("expected ErrRetirementNotAfter for equal ages, got %v", err)
	}
}

func TestValidateProfile_ZeroIncome(t *testing.T) {
	p := validProfile()
	p.Income = 0
	if err := ValidateProfile(p); !errors.Is(err, ErrZeroIncome) {
		t.Errorf("expected ErrZeroIncome, got %v", err)
	}
}

func TestValidateProfile_AgeOutOfRange(t *testing.T) {
	for _, age := range []int{0, 17, 101, -5} {
		p := validProfile()
		p.Age = age
		if err := ValidateProfile(p); !errors.Is(err, ErrAgeOutOfRange) {
			t.Errorf("age %d: expected ErrAgeOutOfRange, got %v", age, err)
		}
	}
}

func TestValidateProfile_NegativeAmounts(t *testing.T) {
	p := validProfile()
	p.CurrentSavings = -1
	if err := ValidateProfile(p); !errors.Is(err, ErrNegativeSavings) {
		t.Errorf("expected ErrNegativeSavings, got %v", err)
	}

	p = validProfile()
	p.SavingsGoal = -100
	if err := ValidateProfile(p); !errors.Is(err, ErrNegativeGoal) {
		t.Errorf("expected ErrNegativeGoal, got %v", err)
	}
}

func TestValidateProfile_MortgageFlag(t *testing.T) {
	p := validProfile()
	p.HasMortgage = "maybe"
	if err := ValidateProfile(p); !errors.Is(err, ErrInvalidMortgageFlag) {
		t.Errorf("expected ErrInvalidMortgageFlag, got %v", err)
	}
}

func TestIsValidation(t *testing.T) {
	p := validProfile()
	p.Income = 0
	err := ValidateProfile(p)
	if !IsValidation(err) {
		t.Errorf("expected IsValidation true for %v", err)
	}
	if IsValidation(errors.New("boom")) {
		t.Error("expected IsValidation false for plain error")
	}
}

func TestMortgageHeld(t *testing.T) {
	if (UserProfile{HasMortgage: "no"}).MortgageHeld() {
		t.Error("no should not hold a mortgage")
	}
	if (UserProfile{}).MortgageHeld() {
		t.Error("default should not hold a mortgage")
	}
	if !(UserProfile{HasMortgage: "yes"}).MortgageHeld() {
		t.Error("yes should hold a mortgage")
	}
}
