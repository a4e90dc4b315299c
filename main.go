package main

import (
	"encoding/json"
	"net/http"

	"github.com/edaniels/golog"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/o0olele/loose-octree/geometry"
	"github.com/o0olele/loose-octree/math32"
	"github.com/o0olele/loose-octree/octree"
)

var logger golog.Logger

// Global instances driven by the HTTP API so a viewer can poke at both trees.
var boundsTree *octree.BoundsOctree[uuid.UUID]
var pointTree *octree.PointOctree[uuid.UUID]

type InitRequest struct {
	Size        float32        `json:"size"`
	Center      math32.Vector3 `json:"center"`
	MinNodeSize float32        `json:"min_node_size"`
	Looseness   float32        `json:"looseness,omitempty"`
}

type AddBoundsRequest struct {
	Box geometry.Box `json:"box"`
}

type AddPointRequest struct {
	Point math32.Vector3 `json:"point"`
}

type EntryRequest struct {
	ID    uuid.UUID       `json:"id"`
	Box   *geometry.Box   `json:"box,omitempty"`
	Point *math32.Vector3 `json:"point,omitempty"`
}

type BoxQueryRequest struct {
	Box geometry.Box `json:"box"`
}

type RayQueryRequest struct {
	Origin      math32.Vector3 `json:"origin"`
	Dir         math32.Vector3 `json:"dir"`
	MaxDistance float32        `json:"max_distance"`
}

type NearbyQueryRequest struct {
	Point       math32.Vector3 `json:"point"`
	MaxDistance float32        `json:"max_distance"`
}

type FrustumQueryRequest struct {
	Planes []geometry.Plane `json:"planes"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Errorf("failed to encode response: %v", err)
	}
}

func initBoundsHandler(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Looseness == 0 {
		req.Looseness = 1.2
	}

	tree, err := octree.NewBoundsOctree[uuid.UUID](req.Size, req.Center, req.MinNodeSize, req.Looseness, logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	boundsTree = tree
	writeJSON(w, map[string]string{"status": "initialized"})
}

func initPointsHandler(w http.ResponseWriter, r *http.Request) {
	var req InitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	tree, err := octree.NewPointOctree[uuid.UUID](req.Size, req.Center, req.MinNodeSize, logger)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	pointTree = tree
	writeJSON(w, map[string]string{"status": "initialized"})
}

func addBoundsHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req AddBoundsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	id := uuid.New()
	if !boundsTree.Add(id, req.Box.GetBounds()) {
		http.Error(w, "Entry could not be added", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{"status": "added", "id": id})
}

func addPointHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	var req AddPointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	id := uuid.New()
	if !pointTree.Add(id, req.Point) {
		http.Error(w, "Entry could not be added", http.StatusUnprocessableEntity)
		return
	}
	writeJSON(w, map[string]any{"status": "added", "id": id})
}

func removeBoundsHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"removed": boundsTree.Remove(req.ID)})
}

func removePointHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"removed": pointTree.Remove(req.ID)})
}

func moveBoundsHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Box == nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	result := boundsTree.Move(req.ID, req.Box.GetBounds())
	writeJSON(w, map[string]any{"result": result.String()})
}

func movePointHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Point == nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	result := pointTree.Move(req.ID, *req.Point)
	writeJSON(w, map[string]any{"result": result.String()})
}

func queryBoundsBoxHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req BoxQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ids := boundsTree.GetIntersecting(req.Box.GetBounds())
	writeJSON(w, map[string]any{"ids": ids, "count": len(ids)})
}

func queryBoundsRayHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req RayQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ray := geometry.Ray{Origin: req.Origin, Dir: req.Dir}
	ids := boundsTree.GetIntersectingRay(ray, req.MaxDistance)
	writeJSON(w, map[string]any{"ids": ids, "count": len(ids)})
}

func queryBoundsFrustumHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	var req FrustumQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ids := boundsTree.GetWithinFrustum(req.Planes)
	writeJSON(w, map[string]any{"ids": ids, "count": len(ids)})
}

func queryPointsNearbyHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	var req NearbyQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	matches := pointTree.GetNearbyWithDistances(req.Point, req.MaxDistance)
	writeJSON(w, map[string]any{"matches": matches, "count": len(matches)})
}

func queryPointsClosestHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	var req NearbyQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	id, ok := pointTree.GetClosest(req.Point)
	writeJSON(w, map[string]any{"found": ok, "id": id})
}

func getBoundsTreeHandler(w http.ResponseWriter, r *http.Request) {
	if boundsTree == nil {
		http.Error(w, "Bounds octree not initialized", http.StatusBadRequest)
		return
	}
	data, err := boundsTree.ToJSON()
	if err != nil {
		http.Error(w, "Failed to serialize octree", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func getPointTreeHandler(w http.ResponseWriter, r *http.Request) {
	if pointTree == nil {
		http.Error(w, "Point octree not initialized", http.StatusBadRequest)
		return
	}
	data, err := pointTree.ToJSON()
	if err != nil {
		http.Error(w, "Failed to serialize octree", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func main() {
	logger = golog.NewDevelopmentLogger("loose-octree")

	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/bounds/init", initBoundsHandler).Methods("POST")
	api.HandleFunc("/bounds/add", addBoundsHandler).Methods("POST")
	api.HandleFunc("/bounds/remove", removeBoundsHandler).Methods("POST")
	api.HandleFunc("/bounds/move", moveBoundsHandler).Methods("POST")
	api.HandleFunc("/bounds/query/box", queryBoundsBoxHandler).Methods("POST")
	api.HandleFunc("/bounds/query/ray", queryBoundsRayHandler).Methods("POST")
	api.HandleFunc("/bounds/query/frustum", queryBoundsFrustumHandler).Methods("POST")
	api.HandleFunc("/bounds/tree", getBoundsTreeHandler).Methods("GET")
	api.HandleFunc("/points/init", initPointsHandler).Methods("POST")
	api.HandleFunc("/points/add", addPointHandler).Methods("POST")
	api.HandleFunc("/points/remove", removePointHandler).Methods("POST")
	api.HandleFunc("/points/move", movePointHandler).Methods("POST")
	api.HandleFunc("/points/query/nearby", queryPointsNearbyHandler).Methods("POST")
	api.HandleFunc("/points/query/closest", queryPointsClosestHandler).Methods("POST")
	api.HandleFunc("/points/tree", getPointTreeHandler).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	handler := c.Handler(r)

	logger.Info("Server starting on http://localhost:8080")
	if err := http.ListenAndServe(":8080", handler); err != nil {
		logger.Fatal(err)
	}
}
