package validator

// RegisterRequest is the public signup payload.
type RegisterRequest struct {
	FullName string `json:"fullName" validate:"required,full_name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`

	PhoneNumber       *string `json:"phoneNumber" validate:"omitempty,phone"`
	Address           *string `json:"address" validate:"omitempty,max=255"`
	MotherName        *string `json:"motherName" validate:"omitempty,max=100"`
	FatherName        *string `json:"fatherName" validate:"omitempty,max=100"`
	ParentContact     *string `json:"parentContact" validate:"omitempty,phone"`
	SchoolCollegeName *string `json:"schoolCollegeName" validate:"omitempty,max=255"`
	ProfilePicURL     *string `json:"profilePicUrl" validate:"omitempty,image_url"`
}

// LoginRequest is the credential payload for token issuance.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token for access-token renewal.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ChangePasswordRequest rotates a user's own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required"`
}

// ProfileUpdateRequest is the self-service profile edit payload. Nil fields
// are left untouched. A non-nil SubjectIDs declares the complete desired
// enrollment set and is reconciled together with the field update.
type ProfileUpdateRequest struct {
	FullName *string `json:"fullName" validate:"omitempty,full_name"`

	PhoneNumber       *string `json:"phoneNumber" validate:"omitempty,phone"`
	Address           *string `json:"address" validate:"omitempty,max=255"`
	MotherName        *string `json:"motherName" validate:"omitempty,max=100"`
	FatherName        *string `json:"fatherName" validate:"omitempty,max=100"`
	ParentContact     *string `json:"parentContact" validate:"omitempty,phone"`
	SchoolCollegeName *string `json:"schoolCollegeName" validate:"omitempty,max=255"`
	ProfilePicURL     *string `json:"profilePicUrl" validate:"omitempty,image_url"`

	SubjectIDs *[]string `json:"subjectIds"`
}

// CompleteProfileRequest fills in the profile after signup and marks the
// account verified.
type CompleteProfileRequest struct {
	PhoneNumber       string  `json:"phoneNumber" validate:"required,phone"`
	Address           string  `json:"address" validate:"required,max=255"`
	MotherName        *string `json:"motherName" validate:"omitempty,max=100"`
	FatherName        *string `json:"fatherName" validate:"omitempty,max=100"`
	ParentContact     *string `json:"parentContact" validate:"omitempty,phone"`
	SchoolCollegeName *string `json:"schoolCollegeName" validate:"omitempty,max=255"`
	ProfilePicURL     *string `json:"profilePicUrl" validate:"omitempty,image_url"`
}

// UserCreateRequest is the admin-side user creation payload.
type UserCreateRequest struct {
	FullName string `json:"fullName" validate:"required,full_name"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,user_role"`

	PhoneNumber       *string `json:"phoneNumber" validate:"omitempty,phone"`
	Address           *string `json:"address" validate:"omitempty,max=255"`
	MotherName        *string `json:"motherName" validate:"omitempty,max=100"`
	FatherName        *string `json:"fatherName" validate:"omitempty,max=100"`
	ParentContact     *string `json:"parentContact" validate:"omitempty,phone"`
	SchoolCollegeName *string `json:"schoolCollegeName" validate:"omitempty,max=255"`
	ProfilePicURL     *string `json:"profilePicUrl" validate:"omitempty,image_url"`
}

// UserUpdateRequest is the admin-side user edit payload.
type UserUpdateRequest struct {
	FullName   *string `json:"fullName" validate:"omitempty,full_name"`
	Email      *string `json:"email" validate:"omitempty,email"`
	Role       *string `json:"role" validate:"omitempty,user_role"`
	IsVerified *bool   `json:"isVerified"`

	PhoneNumber       *string `json:"phoneNumber" validate:"omitempty,phone"`
	Address           *string `json:"address" validate:"omitempty,max=255"`
	MotherName        *string `json:"motherName" validate:"omitempty,max=100"`
	FatherName        *string `json:"fatherName" validate:"omitempty,max=100"`
	ParentContact     *string `json:"parentContact" validate:"omitempty,phone"`
	SchoolCollegeName *string `json:"schoolCollegeName" validate:"omitempty,max=255"`
	ProfilePicURL     *string `json:"profilePicUrl" validate:"omitempty,image_url"`
}

// EnrollmentUpdateRequest declares the complete set of subjects the user
// wants to be enrolled in. The server converges current enrollments to it.
type EnrollmentUpdateRequest struct {
	SubjectIDs []string `json:"subjectIds" validate:"required"`
}

// EnrollmentRequest enrolls in or leaves a single subject.
type EnrollmentRequest struct {
	SubjectID string `json:"subjectId" validate:"required"`
}

// SubjectCreateRequest creates a catalog subject.
type SubjectCreateRequest struct {
	Name        string  `json:"name" validate:"required,subject_name"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// SubjectUpdateRequest edits a catalog subject.
type SubjectUpdateRequest struct {
	Name        *string `json:"name" validate:"omitempty,subject_name"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}

// ContactCreateRequest is the public contact-form payload.
type ContactCreateRequest struct {
	Name    string `json:"name" validate:"required,full_name"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// ContactUpdateRequest edits a stored contact submission.
type ContactUpdateRequest struct {
	Name    *string `json:"name" validate:"omitempty,full_name"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Phone   *string `json:"phone" validate:"omitempty,phone"`
	Message *string `json:"message" validate:"omitempty,min=1,max=5000"`
}

// CarouselCreateRequest adds a slider image.
type CarouselCreateRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,image_url"`
}

// CarouselUpdateRequest swaps a slider image.
type CarouselUpdateRequest struct {
	ImageURL string `json:"imageUrl" validate:"required,image_url"`
}

// DocumentUploadRequest carries the metadata fields of a PDF upload. The file
// itself arrives as multipart form data.
type DocumentUploadRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}
