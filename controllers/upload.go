package controllers

import (
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/himique/Industial-Automation/config"
	"github.com/himique/Industial-Automation/store"
)

// UploadModel stores an uploaded 3D model for a product under a
// deterministic name and records the serving path on the product row.
// Admin-only; the RequireAdmin middleware runs before this handler.
func UploadModel(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("productId"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := store.GetProduct(c.Request.Context(), config.DB, uint(productID))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	if product == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	filename := fmt.Sprintf("product_%d.glb", productID)
	dst := filepath.Join(config.C.ModelsDir, filename)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		log.WithError(err).WithField("product_id", productID).Error("saving uploaded model failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	// The DB stores the URL the frontend loads the model from.
	servingPath := path.Join("/static/models", filename)
	if err := store.SetProductModelPath(c.Request.Context(), config.DB, uint(productID), servingPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update product"})
		return
	}

	BroadcastCatalogEvent(CatalogEvent{Type: "model_updated", ProductID: uint(productID)})
	c.JSON(http.StatusOK, gin.H{"filename": file.Filename, "path": servingPath})
}
