package user

import "sync"

var seedUsers = sync.OnceValue(func() []User {
	hash, err := HashPassword("123")
	if err != nil {
		panic(err)
	}
	return []User{
		{ID: "u1", Name: "John Appleseed", Email: "john@farm.com", Password: hash, Role: RoleFarmer, Location: "Punjab, India"},
		{ID: "u2", Name: "Fresh Mart Ltd", Email: "buyer@market.com", Password: hash, Role: RoleBuyer, Location: "Mumbai, India"},
		{ID: "u3", Name: "Admin User", Email: "admin@farmlink.com", Password: hash, Role: RoleAdmin},
	}
})

// SeedUsers returns the demo accounts used when no snapshot exists. All share the password "123".
func SeedUsers() []User {
	return append([]User(nil), seedUsers()...)
}
