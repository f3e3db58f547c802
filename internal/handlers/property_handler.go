package handlers

import (
	"strconv"

	"github.com/campus-acc/campus-backend/internal/dto"
	"github.com/campus-acc/campus-backend/internal/models"
	"github.com/campus-acc/campus-backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PropertyHandler struct {
	properties   *services.PropertyService
	availability *services.AvailabilityService
	favorites    *services.FavoriteService
}

func NewPropertyHandler(properties *services.PropertyService, availability *services.AvailabilityService,
	favorites *services.FavoriteService) *PropertyHandler {
	return &PropertyHandler{properties: properties, availability: availability, favorites: favorites}
}

func (h *PropertyHandler) render(c *fiber.Ctx, userID uuid.UUID, properties []models.Property) ([]dto.PropertyResponse, error) {
	ids := make([]uint, len(properties))
	for i, p := range properties {
		ids[i] = p.ID
	}
	favorited, err := h.favorites.FavoritedSet(c.UserContext(), userID, ids)
	if err != nil {
		return nil, err
	}
	out := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, dto.NewPropertyResponse(&properties[i], favorited[properties[i].ID]))
	}
	return out, nil
}

// List returns the available catalog, cheapest first.
func (h *PropertyHandler) List(c *fiber.Ctx) error {
	var maxPrice *float64
	if raw := c.Query("max_price"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			return fail(c, fiber.StatusBadRequest, "max_price must be a non-negative number")
		}
		maxPrice = &v
	}

	properties, err := h.properties.List(c.UserContext(), maxPrice)
	if err != nil {
		return writeError(c, err, "property.list")
	}
	resp, err := h.render(c, currentUser(c), properties)
	if err != nil {
		return writeError(c, err, "property.list")
	}
	return c.JSON(resp)
}

func (h *PropertyHandler) Get(c *fiber.Ctx) error {
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	property, err := h.properties.Get(c.UserContext(), id)
	if err != nil {
		return writeError(c, err, "property.get")
	}
	resp, err := h.render(c, currentUser(c), []models.Property{*property})
	if err != nil {
		return writeError(c, err, "property.get")
	}
	return c.JSON(resp[0])
}

func (h *PropertyHandler) Create(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	var req dto.CreatePropertyRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	property, err := h.properties.Create(c.UserContext(), userID, &req)
	if err != nil {
		return writeError(c, err, "property.create")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewPropertyResponse(property, false))
}

func (h *PropertyHandler) Update(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	var req dto.UpdatePropertyRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	property, err := h.properties.Update(c.UserContext(), id, userID, &req)
	if err != nil {
		return writeError(c, err, "property.update")
	}
	return c.JSON(dto.NewPropertyResponse(property, false))
}

func (h *PropertyHandler) Delete(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	if err := h.properties.Delete(c.UserContext(), id, userID); err != nil {
		return writeError(c, err, "property.delete")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// MyListings returns every listing of the current landlord, paused ones
// included.
func (h *PropertyHandler) MyListings(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	properties, err := h.properties.ListByLandlord(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "property.my_listings")
	}
	resp, err := h.render(c, userID, properties)
	if err != nil {
		return writeError(c, err, "property.my_listings")
	}
	return c.JSON(resp)
}

func (h *PropertyHandler) Toggle(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	property, err := h.availability.ToggleProperty(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, err, "availability.toggle_property")
	}
	return c.JSON(dto.AvailabilityResponse{ID: property.ID, IsAvailable: property.IsAvailable})
}

func (h *PropertyHandler) ToggleRoom(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid room id")
	}
	room, err := h.availability.ToggleRoom(c.UserContext(), id, userID)
	if err != nil {
		return writeError(c, err, "availability.toggle_room")
	}
	return c.JSON(dto.AvailabilityResponse{ID: room.ID, IsAvailable: room.IsAvailable})
}

func (h *PropertyHandler) AddRoom(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	var req dto.CreateRoomRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	room, err := h.properties.AddRoom(c.UserContext(), id, userID, &req)
	if err != nil {
		return writeError(c, err, "property.add_room")
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

func (h *PropertyHandler) AddImage(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	var req dto.AddImageRequest
	if msg := bindBody(c, &req); msg != "" {
		return fail(c, fiber.StatusBadRequest, msg)
	}
	image, err := h.properties.AddImage(c.UserContext(), id, userID, &req)
	if err != nil {
		return writeError(c, err, "property.add_image")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ImageResponse{
		ID: image.ID, Image: image.URL, Property: image.PropertyID, Room: image.RoomID,
	})
}

func (h *PropertyHandler) AddFavorite(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	if err := h.favorites.Add(c.UserContext(), userID, id); err != nil {
		return writeError(c, err, "favorite.add")
	}
	return c.JSON(fiber.Map{"message": "Added to wishlist", "is_favorited": true})
}

func (h *PropertyHandler) RemoveFavorite(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	id, ok := idParam(c, "id")
	if !ok {
		return fail(c, fiber.StatusBadRequest, "Invalid property id")
	}
	if err := h.favorites.Remove(c.UserContext(), userID, id); err != nil {
		return writeError(c, err, "favorite.remove")
	}
	return c.JSON(fiber.Map{"message": "Removed from wishlist", "is_favorited": false})
}

func (h *PropertyHandler) Favorites(c *fiber.Ctx) error {
	userID := currentUser(c)
	if userID == uuid.Nil {
		return unauthorized(c)
	}
	properties, err := h.favorites.List(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, "favorite.list")
	}
	out := make([]dto.PropertyResponse, 0, len(properties))
	for i := range properties {
		out = append(out, dto.NewPropertyResponse(&properties[i], true))
	}
	return c.JSON(out)
}
