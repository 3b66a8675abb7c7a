package receipt

import "testing"

func TestParseAmountCents(t *testing.T) {
	amt, err := ParseAmountFromMatch("1,500.00")
	if err != nil || !amt.Equal(dec("1500.00")) {
		t.Fatalf("expected 1500.00 got %s err=%v", amt, err)
	}
	amt2, err2 := ParseAmountFromMatch("RD$7,250.50")
	if err2 != nil || !amt2.Equal(dec("7250.50")) {
		t.Fatalf("expected 7250.50 got %s err=%v", amt2, err2)
	}
}

func TestParseAmountNoCents(t *testing.T) {
	amt, err := ParseAmountFromMatch("RD$ 2,500")
	if err != nil || !amt.Equal(dec("2500")) {
		t.Fatalf("expected 2500 got %s err=%v", amt, err)
	}
}

func TestParseAmountEmpty(t *testing.T) {
	if _, err := ParseAmountFromMatch("   "); err == nil {
		t.Fatalf("expected error for blank input")
	}
	if _, err := ParseAmountFromMatch("RD$"); err == nil {
		t.Fatalf("expected error for marker without digits")
	}
}
