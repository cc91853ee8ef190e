package room

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tcriess/lightspeed-rooms/storage"
	"github.com/tcriess/lightspeed-rooms/types"
)

const (
	invalidImage = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."

	maxPrice = 1e9
)

// RoomInput is the room form, used for both create and update. A nil Image keeps the current image on update.
type RoomInput struct {
	Name        string          `mapstructure:"name" validate:"required,max=200"`
	Topic       string          `mapstructure:"topic" validate:"required,max=200"`
	Description string          `mapstructure:"description"`
	Price       string          `mapstructure:"price" validate:"required,numeric"`
	Image       *storage.Upload `mapstructure:"-" validate:"-"`
}

func (in RoomInput) normalize() RoomInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Price = strings.TrimSpace(in.Price)
	return in
}

func (in RoomInput) Validate() error {
	in = in.normalize()
	ve := types.Validate(in)
	if ve == nil || ve.Fields["price"] == "" {
		price, err := strconv.ParseFloat(in.Price, 64)
		switch {
		case err != nil || math.IsInf(price, 0) || math.IsNaN(price):
			ve = ve.Add("price", "Enter a number.")
		case price < 0:
			ve = ve.Add("price", "Ensure this value is greater than or equal to 0.")
		case price > maxPrice:
			ve = ve.Add("price", fmt.Sprintf("Ensure this value is less than or equal to %.0f.", maxPrice))
		}
	}
	if in.Image != nil && !storage.IsImage(in.Image.Filename) {
		ve = ve.Add("image", invalidImage)
	}
	return ve.OrNil()
}

// PriceValue returns the parsed price. Only meaningful after Validate succeeded.
func (in RoomInput) PriceValue() float64 {
	price, _ := strconv.ParseFloat(strings.TrimSpace(in.Price), 64)
	return price
}

type MessageInput struct {
	Body string `mapstructure:"body" validate:"required"`
}

func (in MessageInput) Validate() error {
	in.Body = strings.TrimSpace(in.Body)
	return types.Validate(in).OrNil()
}

// ProfileInput is a partial profile update: nil fields are left unchanged.
type ProfileInput struct {
	Name     *string         `mapstructure:"name"`
	Username *string         `mapstructure:"username"`
	Email    *string         `mapstructure:"email"`
	Bio      *string         `mapstructure:"bio"`
	Avatar   *storage.Upload `mapstructure:"-"`
}

func (in ProfileInput) Validate() error {
	var ve *types.ValidationError
	if in.Name != nil {
		ve = ve.Merge(types.ValidateVar("name", strings.TrimSpace(*in.Name), "max=200"))
	}
	if in.Username != nil {
		ve = ve.Merge(types.ValidateVar("username", strings.TrimSpace(*in.Username), "required,max=150"))
	}
	if in.Email != nil {
		ve = ve.Merge(types.ValidateVar("email", strings.TrimSpace(*in.Email), "required,email,max=254"))
	}
	if in.Avatar != nil && !storage.IsImage(in.Avatar.Filename) {
		ve = ve.Add("avatar", invalidImage)
	}
	return ve.OrNil()
}
