package models

// RegisterRequest creates a donor account plus its directory profile.
type RegisterRequest struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	BloodGroup string `json:"blood_group"`
	Location   string `json:"location"`
	Password   string `json:"password"`
}

// LoginRequest authenticates by phone number.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	Donor DonorProfile `json:"donor"`
}

func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Name is required"
	}
	if r.Phone == "" {
		errors["phone"] = "Phone is required"
	}
	if r.BloodGroup == "" {
		errors["blood_group"] = "Blood group is required"
	} else if !IsValidBloodGroup(r.BloodGroup) {
		errors["blood_group"] = "Blood group must be one of A+, A-, B+, B-, AB+, AB-, O+, O-"
	}
	if r.Location == "" {
		errors["location"] = "Location is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if len(r.Password) < 6 {
		errors["password"] = "Password must be at least 6 characters"
	}

	return errors
}

func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Phone == "" {
		errors["phone"] = "Phone is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}
