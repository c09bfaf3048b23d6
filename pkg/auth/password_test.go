package auth

import "testing"

func TestPinHashing(t *testing.T) {
	pin := "123456"

	hash, err := HashPin(pin)
	if err != nil {
		t.Fatalf("HashPin: %v", err)
	}
	if hash == pin {
		t.Error("hash should not match plaintext pin")
	}

	if !CheckPin(hash, pin) {
		t.Error("pin should match its hash")
	}
	if CheckPin(hash, "654321") {
		t.Error("wrong pin should not match hash")
	}
}

func TestGeneratePIN(t *testing.T) {
	pin, err := GeneratePIN()
	if err != nil {
		t.Fatalf("GeneratePIN: %v", err)
	}
	if len(pin) != 6 {
		t.Errorf("pin length = %d, want 6", len(pin))
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			t.Errorf("pin %q contains non-digit", pin)
		}
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := GenerateToken(42, "PP-WH1-000042", "PickerPacker", "WH1")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.Role != "PickerPacker" {
		t.Errorf("Role = %q, want PickerPacker", claims.Role)
	}
	if claims.Warehouse != "WH1" {
		t.Errorf("Warehouse = %q, want WH1", claims.Warehouse)
	}

	if _, err := ValidateToken(token + "tampered"); err == nil {
		t.Error("tampered token should not validate")
	}
}
